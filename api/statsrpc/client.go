package statsrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/suspend0/hullabaloo-darren/stats"
)

// Client is a thin typed wrapper over the raw-codec connection.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a stats endpoint. Callers supply transport
// credentials; the raw codec is installed here.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rawCodec{})),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("statsrpc: dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Get returns the engine's most recent sample.
func (c *Client) Get(ctx context.Context) (*stats.Sample, error) {
	var raw []byte
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/Get", []byte{}, &raw); err != nil {
		return nil, err
	}
	var sm stats.Sample
	if err := stats.Unmarshal(raw, &sm); err != nil {
		return nil, fmt.Errorf("statsrpc: decode sample: %w", err)
	}
	return &sm, nil
}

var watchStreamDesc = grpc.StreamDesc{
	StreamName:    "Watch",
	ServerStreams: true,
}

// Watch opens a sample stream. The first message is the current sample
// when one exists; each published sample follows. Cancel ctx to stop.
func (c *Client) Watch(ctx context.Context) (*WatchStream, error) {
	cs, err := c.conn.NewStream(ctx, &watchStreamDesc, "/"+ServiceName+"/Watch")
	if err != nil {
		return nil, err
	}
	if err := cs.SendMsg([]byte{}); err != nil {
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		return nil, err
	}
	return &WatchStream{cs: cs}, nil
}

type WatchStream struct {
	cs grpc.ClientStream
}

// Recv blocks for the next sample.
func (w *WatchStream) Recv() (*stats.Sample, error) {
	var raw []byte
	if err := w.cs.RecvMsg(&raw); err != nil {
		return nil, err
	}
	var sm stats.Sample
	if err := stats.Unmarshal(raw, &sm); err != nil {
		return nil, fmt.Errorf("statsrpc: decode sample: %w", err)
	}
	return &sm, nil
}
