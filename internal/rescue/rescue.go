// Package rescue turns application errors raised by resolvers into field
// errors, so a failing field does not abort the whole execution.
package rescue

import (
	"context"
	"errors"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// Matcher selects the errors a handler is responsible for.
type Matcher func(err error) bool

// Handler converts a matched error into a field error. Returning nil
// declines the error; the next older matching handler is consulted.
type Handler func(ctx context.Context, inv *schema.FieldInvocation, err error) *gqlerrors.ExecutionError

type entry struct {
	match  Matcher
	handle Handler
}

// Middleware holds ordered (matcher, handler) pairs. The most recently
// registered matching handler wins. Errors that no handler converts are
// returned unchanged and abort the execution.
type Middleware struct {
	entries []entry
}

func New() *Middleware {
	return &Middleware{}
}

// On registers a handler for errors accepted by match.
func (m *Middleware) On(match Matcher, handle Handler) *Middleware {
	m.entries = append(m.entries, entry{match: match, handle: handle})
	return m
}

// Middleware returns m as a schema middleware.
func (m *Middleware) Middleware() schema.Middleware {
	return m.Resolve
}

// Resolve calls next and rescues its error when a handler accepts it.
// Field errors pass through untouched.
func (m *Middleware) Resolve(ctx context.Context, inv *schema.FieldInvocation, next schema.NextFunc) (any, error) {
	v, err := next(ctx)
	if err == nil {
		return v, nil
	}
	if _, ok := gqlerrors.AsExecutionError(err); ok {
		return nil, err
	}
	if rescued := m.rescue(ctx, inv, err); rescued != nil {
		return nil, rescued
	}
	return nil, err
}

func (m *Middleware) rescue(ctx context.Context, inv *schema.FieldInvocation, err error) *gqlerrors.ExecutionError {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if !e.match(err) {
			continue
		}
		if rescued := e.handle(ctx, inv, err); rescued != nil {
			return rescued
		}
	}
	return nil
}

// Rescue registers handle for errors whose chain contains a T.
func Rescue[T error](m *Middleware, handle func(ctx context.Context, err T) *gqlerrors.ExecutionError) *Middleware {
	return m.On(
		func(err error) bool {
			var target T
			return errors.As(err, &target)
		},
		func(ctx context.Context, _ *schema.FieldInvocation, err error) *gqlerrors.ExecutionError {
			var target T
			if !errors.As(err, &target) {
				return nil
			}
			return handle(ctx, target)
		},
	)
}

// Is matches errors equal to target anywhere in the chain.
func Is(target error) Matcher {
	return func(err error) bool { return errors.Is(err, target) }
}

// Any matches every error.
func Any(error) bool { return true }

// Message is a handler exposing the error text as the field error message.
func Message(_ context.Context, _ *schema.FieldInvocation, err error) *gqlerrors.ExecutionError {
	return &gqlerrors.ExecutionError{Message: err.Error()}
}
