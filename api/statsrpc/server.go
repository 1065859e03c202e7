package statsrpc

import (
	"context"
	"log"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/suspend0/hullabaloo-darren/stats"
)

// ServiceName is the full gRPC service name.
const ServiceName = "statsrpc.Stats"

// watchBuffer is the per-watcher queue depth. A watcher that falls
// further behind misses samples rather than stalling the publisher.
const watchBuffer = 16

// Server fans published samples out to RPC clients.
type Server struct {
	mu       sync.Mutex
	latest   *stats.Sample
	nextID   uint64
	watchers map[uint64]chan *stats.Sample
}

var _ stats.Sink = (*Server)(nil)

func NewServer() *Server {
	return &Server{watchers: make(map[uint64]chan *stats.Sample)}
}

// Publish records s as the latest sample and hands it to every
// attached watcher.
func (s *Server) Publish(sm *stats.Sample) error {
	s.mu.Lock()
	s.latest = sm
	for _, ch := range s.watchers {
		select {
		case ch <- sm:
		default:
		}
	}
	s.mu.Unlock()
	return nil
}

// -------------------- Handlers --------------------

func (s *Server) get(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	sm := s.latest
	s.mu.Unlock()
	if sm == nil {
		return nil, status.Error(codes.NotFound, "no samples published yet")
	}
	return stats.Marshal(sm), nil
}

func (s *Server) watch(stream grpc.ServerStream) error {
	ch := make(chan *stats.Sample, watchBuffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	last := s.latest
	s.mu.Unlock()

	log.Printf("[statsrpc] watcher %d attached", id)
	defer func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
		log.Printf("[statsrpc] watcher %d detached", id)
	}()

	// New watchers start from the current state.
	if last != nil {
		if err := stream.SendMsg(stats.Marshal(last)); err != nil {
			return err
		}
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sm := <-ch:
			if err := stream.SendMsg(stats.Marshal(sm)); err != nil {
				return err
			}
		}
	}
}

// -------------------- Service wiring --------------------

// statsServer is the handler contract behind the service descriptor.
type statsServer interface {
	get(ctx context.Context) ([]byte, error)
	watch(stream grpc.ServerStream) error
}

func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	var req []byte
	if err := dec(&req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(statsServer).get(ctx)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Get"}
	handler := func(ctx context.Context, _ any) (any, error) {
		return srv.(statsServer).get(ctx)
	}
	return interceptor(ctx, req, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	var req []byte
	if err := stream.RecvMsg(&req); err != nil {
		return err
	}
	return srv.(statsServer).watch(stream)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*statsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: getHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
}

// NewGRPCServer builds a grpc.Server locked to the raw byte codec this
// service speaks.
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ForceServerCodec(rawCodec{}))
	return grpc.NewServer(opts...)
}

// Register attaches s to g. Use NewGRPCServer so the codec matches.
func Register(g *grpc.Server, s *Server) {
	g.RegisterService(&serviceDesc, s)
}
