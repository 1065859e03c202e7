package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/suspend0/hullabaloo-darren/api/statsrpc"
	"github.com/suspend0/hullabaloo-darren/infra/kafka"
	"github.com/suspend0/hullabaloo-darren/infra/metrics"
	"github.com/suspend0/hullabaloo-darren/jobs/broadcaster"
	"github.com/suspend0/hullabaloo-darren/journal"
	"github.com/suspend0/hullabaloo-darren/soak"
	"github.com/suspend0/hullabaloo-darren/stats"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		duration   = flag.Duration("duration", 0, "run length, overrides config")
		readers    = flag.Int("readers", 0, "reader count, overrides config")
		slots      = flag.Int("slots", 0, "table slots, overrides config")
	)
	flag.Parse()

	// ---------------- Config ----------------

	var cfg soak.Config
	if *configPath != "" {
		var err error
		cfg, err = soak.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if *readers > 0 {
		cfg.Readers = *readers
	}
	if *slots > 0 {
		cfg.Slots = *slots
	}

	// ---------------- Sinks ----------------

	sinks := []stats.Sink{stats.LogSink{}}

	var jr *journal.Journal
	if cfg.JournalDir != "" {
		var err error
		jr, err = journal.Open(cfg.JournalDir)
		if err != nil {
			log.Fatalf("journal init failed: %v", err)
		}
		defer jr.Close()
		sinks = append(sinks, stats.SinkFunc(jr.Append))
	}

	var tap *kafka.Tap
	if len(cfg.KafkaBrokers) > 0 && cfg.TapTopic != "" {
		tap = kafka.NewTap(cfg.KafkaBrokers, cfg.TapTopic)
		defer tap.Close()
		sinks = append(sinks, tap)
	}

	rpcSrv := statsrpc.NewServer()
	sinks = append(sinks, rpcSrv)

	// ---------------- Engine ----------------

	e := soak.NewEngine(cfg, sinks...)

	// ---------------- Observability ----------------

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.New(e).Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("[main] metrics server: %v", err)
			}
		}()
	}

	if cfg.RPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.RPCAddr)
		if err != nil {
			log.Fatalf("rpc listen failed: %v", err)
		}
		g := statsrpc.NewGRPCServer()
		statsrpc.Register(g, rpcSrv)
		defer g.Stop()
		go func() {
			if err := g.Serve(lis); err != nil {
				log.Printf("[main] rpc server: %v", err)
			}
		}()
	}

	// ---------------- Broadcaster ----------------

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bcCtx, bcCancel := context.WithCancel(ctx)
	defer bcCancel()
	bcDone := make(chan struct{})
	close(bcDone)

	if jr != nil && len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic != "" {
		bc, err := broadcaster.New(jr, cfg.KafkaBrokers, cfg.KafkaTopic, e.RunID(), 0)
		if err != nil {
			log.Fatalf("broadcaster init failed: %v", err)
		}
		defer bc.Close()

		bcDone = make(chan struct{})
		go func() {
			defer close(bcDone)
			if err := bc.Run(bcCtx); err != nil {
				log.Printf("[main] broadcaster stopped: %v", err)
			}
		}()
	}

	// ---------------- Run ----------------

	fmt.Printf("soak engine running: run=%s\n", e.RunID())

	runErr := e.Run(ctx)

	// Stop the broadcaster only after the engine has drained, so its
	// shutdown pass sees every journaled sample.
	bcCancel()
	<-bcDone

	if tap != nil && tap.Dropped() > 0 {
		log.Printf("[main] tap dropped %d samples", tap.Dropped())
	}
	if runErr != nil {
		log.Fatalf("run failed: %v", runErr)
	}
}
