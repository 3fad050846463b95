package schema

import "context"

// ResolveFunc produces the raw value of a field from its parent value and
// coerced arguments.
type ResolveFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// FieldInvocation describes one field resolution passing through the
// middleware chain.
type FieldInvocation struct {
	ParentType *Type
	Field      *Field
	Source     any
	Args       map[string]any
}

// NextFunc continues resolution with the next layer of the chain.
type NextFunc func(ctx context.Context) (any, error)

// Middleware wraps a field resolution. It may transform the result, return
// an error, or skip calling next altogether.
type Middleware func(ctx context.Context, inv *FieldInvocation, next NextFunc) (any, error)

// MiddlewareChain is applied outermost first: chain[0](chain[1](...resolve)).
type MiddlewareChain []Middleware

// Resolve runs inv through the chain, ending with final.
func (c MiddlewareChain) Resolve(ctx context.Context, inv *FieldInvocation, final ResolveFunc) (any, error) {
	var call func(i int, ctx context.Context) (any, error)
	call = func(i int, ctx context.Context) (any, error) {
		if i == len(c) {
			return final(ctx, inv.Source, inv.Args)
		}
		return c[i](ctx, inv, func(ctx context.Context) (any, error) {
			return call(i+1, ctx)
		})
	}
	return call(0, ctx)
}
