package grpctp

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	reqid "github.com/hanpama/gqlcore/internal/reqid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func echoRequest(text string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{"text": structpb.NewStringValue(text)}}
}

type echoer interface{}

func echoHandler(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	text := in.GetFields()["text"].GetStringValue()
	if text == "" {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	out := echoRequest(text)
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("graphql-request-id"); len(v) > 0 {
			out.Fields["requestId"] = structpb.NewStringValue(v[0])
		}
	}
	return out, nil
}

func newBufTransport(t *testing.T, opts ...Option) *Transport {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "test.Echo",
		HandlerType: (*echoer)(nil),
		Methods:     []grpc.MethodDesc{{MethodName: "Say", Handler: echoHandler}},
	}, struct{}{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	opts = append([]Option{
		WithProvider(NewStaticEndpoints(map[string][]string{"test.Echo": {"bufnet"}})),
		WithDialOptions(
			grpc.WithContextDialer(dialer),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		),
	}, opts...)
	tp := New(opts...)
	t.Cleanup(func() { _ = tp.Close() })
	return tp
}

func TestCall(t *testing.T) {
	tp := newBufTransport(t)
	ctx := reqid.WithID(context.Background(), "rid-1")

	out := new(structpb.Struct)
	require.NoError(t, tp.Call(ctx, "/test.Echo/Say", echoRequest("hi"), out))
	assert.Equal(t, map[string]any{"text": "hi", "requestId": "rid-1"}, out.AsMap())

	// pooled connection is reused
	out = new(structpb.Struct)
	require.NoError(t, tp.Call(ctx, "/test.Echo/Say", echoRequest("again"), out))
	assert.Equal(t, "again", out.GetFields()["text"].GetStringValue())
}

func TestCallStatusError(t *testing.T) {
	tp := newBufTransport(t)
	err := tp.Call(context.Background(), "/test.Echo/Say", echoRequest(""), new(structpb.Struct))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "text is required", st.Message())

	err = tp.Call(context.Background(), "/test.Echo/Shout", echoRequest("x"), new(structpb.Struct))
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestCallEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var mu sync.Mutex
	var starts []events.GRPCClientStart
	var finishes []events.GRPCClientFinish
	defer eventbus.Subscribe(func(_ context.Context, e events.GRPCClientStart) {
		mu.Lock()
		starts = append(starts, e)
		mu.Unlock()
	})()
	defer eventbus.Subscribe(func(_ context.Context, e events.GRPCClientFinish) {
		mu.Lock()
		finishes = append(finishes, e)
		mu.Unlock()
	})()

	tp := newBufTransport(t)
	_ = tp.Call(context.Background(), "/test.Echo/Say", echoRequest(""), new(structpb.Struct))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.GRPCClientStart{{Call: 1, Service: "test.Echo", Method: "Say", Target: "bufnet"}}, starts)
	require.Len(t, finishes, 1)
	assert.Equal(t, uint64(1), finishes[0].Call)
	assert.Equal(t, codes.InvalidArgument, finishes[0].Code)
	assert.Error(t, finishes[0].Err)
}

func TestCallErrors(t *testing.T) {
	tp := newBufTransport(t)

	err := tp.Call(context.Background(), "/other.Service/Do", echoRequest(""), new(structpb.Struct))
	assert.ErrorIs(t, err, ErrNoEndpoints)

	for _, m := range []string{"test.Echo/Say", "/test.Echo/", "/Say", ""} {
		assert.ErrorContains(t, tp.Call(context.Background(), m, nil, nil), "malformed method", m)
	}

	require.NoError(t, tp.Close())
	assert.True(t, errors.Is(tp.Call(context.Background(), "/test.Echo/Say", nil, nil), ErrClosed))

	assert.ErrorContains(t, New().Call(context.Background(), "/test.Echo/Say", nil, nil), "provider not configured")
}

func TestStaticEndpoints(t *testing.T) {
	p := NewStaticEndpoints(map[string][]string{
		"a.Svc":  {"a:1", "a:2"},
		Wildcard: {"default:1"},
	})
	ctx := context.Background()

	got, err := p.Endpoints(ctx, "a.Svc")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "a:2"}, got)

	got, err = p.Endpoints(ctx, "b.Svc")
	require.NoError(t, err)
	assert.Equal(t, []string{"default:1"}, got)

	p.Set(Wildcard)
	_, err = p.Endpoints(ctx, "b.Svc")
	assert.ErrorIs(t, err, ErrNoEndpoints)

	got, _ = p.Endpoints(ctx, "a.Svc")
	got[0] = "mutated"
	again, _ := p.Endpoints(ctx, "a.Svc")
	assert.Equal(t, "a:1", again[0])
}

func TestOptions(t *testing.T) {
	o := defaultOptions()
	WithMaxConnsPerEndpoint(0)(o)
	WithRPCTimeout(0)(o)
	assert.Equal(t, defaultConnsPerEndpoint, o.MaxConnsPerEndpoint)
	assert.Zero(t, o.RPCTimeout)

	WithMaxConnsPerEndpoint(8)(o)
	WithEndpoints(map[string][]string{"a.Svc": {"a:1"}})(o)
	assert.Equal(t, 8, o.MaxConnsPerEndpoint)
	eps, err := o.Provider.Endpoints(context.Background(), "a.Svc")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1"}, eps)
}
