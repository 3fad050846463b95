package gqlerrors

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

func TestAsExecutionError(t *testing.T) {
	inner := New("not allowed: %s", "x")
	wrapped := fmt.Errorf("resolve: %w", inner)

	got, ok := AsExecutionError(wrapped)
	if !ok || got != inner {
		t.Fatalf("expected wrapped execution error, got %v ok=%v", got, ok)
	}
	if _, ok := AsExecutionError(fmt.Errorf("plain")); ok {
		t.Fatalf("plain error must not match")
	}

	var nilErr *ExecutionError
	if _, ok := AsExecutionError(nilErr); ok {
		t.Fatalf("nil execution error must not match")
	}
}

func TestNormalize(t *testing.T) {
	var nilErr *ExecutionError
	if err := Normalize(nilErr); err != nil {
		t.Fatalf("expected nil, got %#v", err)
	}
	inner := New("boom")
	if err := Normalize(inner); err != inner {
		t.Fatalf("expected the error unchanged, got %v", err)
	}
	plain := fmt.Errorf("plain")
	if err := Normalize(plain); err != plain {
		t.Fatalf("expected the error unchanged, got %v", err)
	}
}

func TestFromGQLError(t *testing.T) {
	src := &gqlerror.Error{
		Message:   "Cannot query field \"x\" on type \"Query\".",
		Locations: []gqlerror.Location{{Line: 1, Column: 3}},
		Path:      ast.Path{ast.PathName("a"), ast.PathIndex(2)},
	}
	want := &ExecutionError{
		Message:   "Cannot query field \"x\" on type \"Query\".",
		Locations: []Location{{Line: 1, Column: 3}},
		Path:      []any{"a", 2},
	}
	if diff := cmp.Diff(want, FromGQLError(src)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWithExtensions(t *testing.T) {
	base := &ExecutionError{Message: "m", Extensions: map[string]any{"a": 1}}
	ext := base.WithExtensions(map[string]any{"code": "NOT_FOUND"})
	if diff := cmp.Diff(map[string]any{"a": 1, "code": "NOT_FOUND"}, ext.Extensions); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, ok := base.Extensions["code"]; ok {
		t.Fatalf("original must not be mutated")
	}
}
