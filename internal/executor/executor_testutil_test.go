package executor

import (
	"context"
	"sync"
	"testing"

	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func mustSchema(t *testing.T, cfg schema.Config) *schema.Schema {
	t.Helper()
	s, err := schema.New(cfg)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

// Call is one field resolution observed by a callRecorder.
type Call struct {
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

// callRecorder is a middleware recording every field it sees.
type callRecorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *callRecorder) middleware(ctx context.Context, inv *schema.FieldInvocation, next schema.NextFunc) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{
		ObjectType: inv.ParentType.Name,
		Field:      inv.Field.Name,
		Source:     inv.Source,
		Args:       inv.Args,
	})
	r.mu.Unlock()
	return next(ctx)
}

func (r *callRecorder) GetCalls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func valueResolver(v any) schema.ResolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return v, nil }
}

func errorResolver(err error) schema.ResolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

func execute(t *testing.T, s *schema.Schema, query string, variables map[string]any, opts ...Option) *Result {
	t.Helper()
	res, err := NewExecutor(s, opts...).ExecuteRequest(context.Background(), mustParseQuery(t, query), "", variables, nil)
	if err != nil {
		t.Fatalf("ExecuteRequest: %v", err)
	}
	return res
}
