package otel

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	config "github.com/hanpama/gqlcore/internal/config"
	engine "github.com/hanpama/gqlcore/internal/engine"
	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	reqid "github.com/hanpama/gqlcore/internal/reqid"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	grpccodes "google.golang.org/grpc/codes"
)

func newRecorder(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tr := NewTracer(tp)
	t.Cleanup(tr.Register())
	return tr, sr
}

func spanNamed(t *testing.T, spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	t.Fatalf("span %q not recorded", name)
	return nil
}

func attr(s sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestSetupWithoutEndpoint(t *testing.T) {
	tr, shutdown, err := Setup(context.Background(), config.OtelConfig{})
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.NoError(t, shutdown(context.Background()))
}

func TestRequestSpans(t *testing.T) {
	_, sr := newRecorder(t)
	ctx := reqid.WithID(context.Background(), "req-1")
	req := httptest.NewRequest("POST", "/graphql", nil)

	eventbus.Publish(ctx, events.HTTPStart{Request: req})
	eventbus.Publish(ctx, events.QueryStart{OperationName: "Q", OperationType: "query"})
	eventbus.Publish(ctx, events.QueryFinish{OperationName: "Q", OperationType: "query", Errors: gqlerrors.List{{Message: "x"}}})
	eventbus.Publish(ctx, events.HTTPFinish{Request: req, Status: 200, Batch: 3})

	spans := sr.Ended()
	require.Len(t, spans, 2)
	httpSpan := spanNamed(t, spans, "http.request")
	opSpan := spanNamed(t, spans, "graphql.operation")

	assert.Equal(t, httpSpan.SpanContext().SpanID(), opSpan.Parent().SpanID())
	assert.Equal(t, "Q", attr(opSpan, "graphql.operation.name").AsString())
	assert.Equal(t, int64(1), attr(opSpan, "graphql.error_count").AsInt64())
	assert.Equal(t, "/graphql", attr(httpSpan, "http.target").AsString())
	assert.Equal(t, int64(3), attr(httpSpan, "graphql.batch_size").AsInt64())
	assert.Equal(t, codes.Unset, httpSpan.Status().Code)
}

func TestGRPCClientSpans(t *testing.T) {
	_, sr := newRecorder(t)
	ctx := reqid.WithID(context.Background(), "req-4")

	eventbus.Publish(ctx, events.QueryStart{OperationType: "query"})
	eventbus.Publish(ctx, events.GRPCClientStart{Call: 1, Service: "starwars.Fleet", Method: "GetStarship", Target: "fleet:9090"})
	eventbus.Publish(ctx, events.GRPCClientStart{Call: 2, Service: "starwars.Fleet", Method: "GetStarship", Target: "fleet:9090"})
	eventbus.Publish(ctx, events.GRPCClientFinish{Call: 2, Code: grpccodes.OK})
	eventbus.Publish(ctx, events.GRPCClientFinish{Call: 1, Code: grpccodes.NotFound, Err: errors.New("not found")})
	eventbus.Publish(ctx, events.QueryFinish{OperationType: "query"})

	spans := sr.Ended()
	require.Len(t, spans, 3)
	opSpan := spanNamed(t, spans, "graphql.operation")
	second, first := spans[0], spans[1]
	for _, s := range []sdktrace.ReadOnlySpan{first, second} {
		assert.Equal(t, "grpc.client", s.Name())
		assert.Equal(t, opSpan.SpanContext().SpanID(), s.Parent().SpanID())
		assert.Equal(t, "starwars.Fleet", attr(s, "rpc.service").AsString())
	}
	assert.Equal(t, codes.Unset, second.Status().Code)
	assert.Equal(t, codes.Error, first.Status().Code)
	assert.Equal(t, int64(grpccodes.NotFound), attr(first, "rpc.grpc.status_code").AsInt64())
}

func TestUnmatchedFinishIsIgnored(t *testing.T) {
	_, sr := newRecorder(t)
	ctx := reqid.WithID(context.Background(), "orphan")
	eventbus.Publish(ctx, events.QueryFinish{OperationType: "query"})
	assert.Empty(t, sr.Ended())
}

func TestFieldTracing(t *testing.T) {
	tr, sr := newRecorder(t)
	errBackend := errors.New("backend down")

	user := schema.NewObject("User", "").AddField(
		schema.NewField("name", schema.String, func(context.Context, any, map[string]any) (any, error) {
			return "Ada", nil
		}),
	)
	query := schema.NewObject("Query", "").AddField(
		schema.NewField("me", user, func(context.Context, any, map[string]any) (any, error) {
			return struct{}{}, nil
		}),
		schema.NewField("secret", schema.String, func(context.Context, any, map[string]any) (any, error) {
			return nil, gqlerrors.New("forbidden")
		}),
		schema.NewField("fail", schema.String, func(context.Context, any, map[string]any) (any, error) {
			return nil, errBackend
		}),
	)
	s, err := schema.New(schema.Config{Query: query, Middleware: []schema.Middleware{tr.FieldTracing()}})
	require.NoError(t, err)
	eng := engine.New(s)

	ctx := reqid.WithID(context.Background(), "req-2")
	res, err := eng.Execute(ctx, engine.Request{Query: "query Me { me { name } secret __typename }"})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)

	spans := sr.Ended()
	opSpan := spanNamed(t, spans, "graphql.operation")
	me := spanNamed(t, spans, "graphql.resolve Query.me")
	name := spanNamed(t, spans, "graphql.resolve User.name")
	secret := spanNamed(t, spans, "graphql.resolve Query.secret")

	assert.Equal(t, opSpan.SpanContext().SpanID(), me.Parent().SpanID())
	assert.Equal(t, opSpan.SpanContext().TraceID(), name.SpanContext().TraceID())
	assert.Equal(t, "me.name", attr(name, "graphql.field.path").AsString())
	assert.Equal(t, codes.Unset, secret.Status().Code)
	require.Len(t, secret.Events(), 1)
	assert.Equal(t, "exception", secret.Events()[0].Name)
	for _, s := range spans {
		assert.NotContains(t, s.Name(), "__typename")
	}

	_, err = eng.Execute(reqid.WithID(context.Background(), "req-3"), engine.Request{Query: "{ fail }"})
	require.ErrorIs(t, err, errBackend)
	fail := spanNamed(t, sr.Ended(), "graphql.resolve Query.fail")
	assert.Equal(t, codes.Error, fail.Status().Code)
	assert.Equal(t, "backend down", fail.Status().Description)
}
