package statsrpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/suspend0/hullabaloo-darren/stats"
)

func rpcSample(seq uint64) *stats.Sample {
	return &stats.Sample{
		RunID:      "run-rpc",
		Seq:        seq,
		UnixNanos:  1700000000000000000 + int64(seq),
		Generation: seq * 10,
		Pending:    seq,
		Lag:        1,
		Readers:    4,
		Retired:    seq * 100,
		Reclaimed:  seq * 90,
	}
}

func newTestClient(t *testing.T, srv *Server) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	g := NewGRPCServer()
	Register(g, srv)
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	cli, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { cli.Close() })
	return cli
}

func TestGetBeforeFirstSample(t *testing.T) {
	cli := newTestClient(t, NewServer())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := cli.Get(ctx)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("want NotFound before any sample, got %v", err)
	}
}

func TestGetReturnsLatestSample(t *testing.T) {
	srv := NewServer()
	cli := newTestClient(t, srv)

	if err := srv.Publish(rpcSample(1)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := srv.Publish(rpcSample(2)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cli.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := rpcSample(2); *got != *want {
		t.Fatalf("latest sample: got %+v want %+v", got, want)
	}
}

func TestWatchStreamsSamples(t *testing.T) {
	srv := NewServer()
	cli := newTestClient(t, srv)

	if err := srv.Publish(rpcSample(1)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w, err := cli.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// The opening message replays the current sample. Receiving it also
	// proves the watcher is attached, so the next publish cannot race
	// the registration.
	got, err := w.Recv()
	if err != nil {
		t.Fatalf("recv current: %v", err)
	}
	if want := rpcSample(1); *got != *want {
		t.Fatalf("current sample: got %+v want %+v", got, want)
	}

	if err := srv.Publish(rpcSample(2)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got, err = w.Recv()
	if err != nil {
		t.Fatalf("recv update: %v", err)
	}
	if want := rpcSample(2); *got != *want {
		t.Fatalf("streamed sample: got %+v want %+v", got, want)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	srv := NewServer()
	cli := newTestClient(t, srv)

	if err := srv.Publish(rpcSample(1)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w, err := cli.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if _, err := w.Recv(); err != nil {
		t.Fatalf("recv current: %v", err)
	}

	cancel()
	if _, err := w.Recv(); status.Code(err) != codes.Canceled {
		t.Fatalf("want Canceled after cancel, got %v", err)
	}
}
