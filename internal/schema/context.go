package schema

import (
	"context"

	language "github.com/hanpama/gqlcore/internal/language"
)

// FieldContext is the execution state visible to a resolver: the field
// being resolved, its selection node and the operation's variables.
type FieldContext struct {
	Schema     *Schema
	ParentType *Type
	Field      *Field
	AST        *language.Field
	Path       []any
	Variables  map[string]any
}

type fieldContextKey struct{}

func WithFieldContext(ctx context.Context, fc *FieldContext) context.Context {
	return context.WithValue(ctx, fieldContextKey{}, fc)
}

// GetFieldContext returns the FieldContext of the field being resolved, or
// nil outside of field resolution.
func GetFieldContext(ctx context.Context) *FieldContext {
	fc, _ := ctx.Value(fieldContextKey{}).(*FieldContext)
	return fc
}
