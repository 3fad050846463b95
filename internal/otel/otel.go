package otel

import (
	"context"
	"strings"
	"sync"

	config "github.com/hanpama/gqlcore/internal/config"
	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	executor "github.com/hanpama/gqlcore/internal/executor"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	reqid "github.com/hanpama/gqlcore/internal/reqid"
	schema "github.com/hanpama/gqlcore/internal/schema"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hanpama/gqlcore"

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If the endpoint is empty, no telemetry is configured and the returned
// Tracer is nil.
func Setup(ctx context.Context, cfg config.OtelConfig) (*Tracer, func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return nil, func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.Service),
		)),
	)
	otel.SetTracerProvider(tp)

	t := NewTracer(tp)
	t.Register()
	return t, tp.Shutdown, nil
}

// Tracer turns request and query events into spans. Spans belonging to
// the same request are correlated by request id.
type Tracer struct {
	tracer     trace.Tracer
	httpSpans  sync.Map // rid -> trace.Span
	querySpans sync.Map // rid -> trace.Span
	grpcSpans  sync.Map // call -> trace.Span
}

func NewTracer(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(instrumentationName)}
}

// Register subscribes t to the global event bus.
func (t *Tracer) Register() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(t.onHTTPStart),
		eventbus.Subscribe(t.onHTTPFinish),
		eventbus.Subscribe(t.onQueryStart),
		eventbus.Subscribe(t.onQueryFinish),
		eventbus.Subscribe(t.onGRPCStart),
		eventbus.Subscribe(t.onGRPCFinish),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (t *Tracer) onHTTPStart(ctx context.Context, e events.HTTPStart) {
	rid, _ := reqid.FromContext(ctx)
	_, span := t.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		semconv.HTTPMethodKey.String(e.Request.Method),
		attribute.String("http.target", e.Request.URL.Path),
	)
	t.httpSpans.Store(rid, span)
}

func (t *Tracer) onHTTPFinish(ctx context.Context, e events.HTTPFinish) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := t.httpSpans.LoadAndDelete(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
	if e.Batch > 0 {
		span.SetAttributes(attribute.Int("graphql.batch_size", e.Batch))
	}
	if e.Status >= 500 {
		span.SetStatus(codes.Error, "")
	}
	span.End()
}

func (t *Tracer) onQueryStart(ctx context.Context, e events.QueryStart) {
	rid, _ := reqid.FromContext(ctx)
	parent := ctx
	if v, ok := t.httpSpans.Load(rid); ok {
		parent = trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	_, span := t.tracer.Start(parent, "graphql.operation")
	span.SetAttributes(
		attribute.String("graphql.operation.name", e.OperationName),
		attribute.String("graphql.operation.type", e.OperationType),
	)
	t.querySpans.Store(rid, span)
}

func (t *Tracer) onQueryFinish(ctx context.Context, e events.QueryFinish) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := t.querySpans.LoadAndDelete(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End()
}

func (t *Tracer) onGRPCStart(ctx context.Context, e events.GRPCClientStart) {
	_, span := t.tracer.Start(t.parent(ctx), "grpc.client", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		semconv.RPCSystemGRPC,
		semconv.RPCServiceKey.String(e.Service),
		semconv.RPCMethodKey.String(e.Method),
		attribute.String("net.peer.name", e.Target),
	)
	t.grpcSpans.Store(e.Call, span)
}

func (t *Tracer) onGRPCFinish(_ context.Context, e events.GRPCClientFinish) {
	v, ok := t.grpcSpans.LoadAndDelete(e.Call)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(semconv.RPCGRPCStatusCodeKey.Int(int(e.Code)))
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Code.String())
	}
	span.End()
}

// parent returns ctx when it already carries a span, otherwise ctx with the
// span of the operation its request is executing.
func (t *Tracer) parent(ctx context.Context) context.Context {
	if trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx
	}
	rid, _ := reqid.FromContext(ctx)
	if v, ok := t.querySpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

// FieldTracing returns middleware recording a span per resolved field.
// Introspection fields are not traced.
func (t *Tracer) FieldTracing() schema.Middleware {
	return func(ctx context.Context, inv *schema.FieldInvocation, next schema.NextFunc) (any, error) {
		if isIntrospection(inv) {
			return next(ctx)
		}
		ctx, span := t.tracer.Start(t.parent(ctx), "graphql.resolve "+inv.ParentType.Name+"."+inv.Field.Name)
		defer span.End()
		span.SetAttributes(
			attribute.String("graphql.field.parent", inv.ParentType.Name),
			attribute.String("graphql.field.name", inv.Field.Name),
		)
		if fc := schema.GetFieldContext(ctx); fc != nil {
			span.SetAttributes(attribute.String("graphql.field.path", executor.FormatPath(fc.Path)))
		}

		v, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			if _, local := gqlerrors.AsExecutionError(err); !local {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		return v, err
	}
}

func isIntrospection(inv *schema.FieldInvocation) bool {
	return strings.HasPrefix(inv.ParentType.Name, "__") || strings.HasPrefix(inv.Field.Name, "__")
}
