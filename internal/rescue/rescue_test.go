package rescue_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	rescue "github.com/hanpama/gqlcore/internal/rescue"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return "not found: " + e.id }

var errForbidden = errors.New("forbidden")

func failWith(err error) schema.NextFunc {
	return func(context.Context) (any, error) { return nil, err }
}

func TestMiddleware_Resolve(t *testing.T) {
	ctx := context.Background()
	inv := &schema.FieldInvocation{}

	m := rescue.New()
	rescue.Rescue(m, func(_ context.Context, err *notFoundError) *gqlerrors.ExecutionError {
		return gqlerrors.New("no record %s", err.id)
	})
	m.On(rescue.Is(errForbidden), func(context.Context, *schema.FieldInvocation, error) *gqlerrors.ExecutionError {
		return gqlerrors.New("access denied")
	})

	t.Run("success passes through", func(t *testing.T) {
		got, err := m.Resolve(ctx, inv, func(context.Context) (any, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})
	t.Run("typed error", func(t *testing.T) {
		_, err := m.Resolve(ctx, inv, failWith(fmt.Errorf("load: %w", &notFoundError{id: "7"})))
		if diff := cmp.Diff(&gqlerrors.ExecutionError{Message: "no record 7"}, err); diff != "" {
			t.Fatalf("error mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("sentinel error", func(t *testing.T) {
		_, err := m.Resolve(ctx, inv, failWith(errForbidden))
		assert.EqualError(t, err, "access denied")
	})
	t.Run("unmatched error is returned unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := m.Resolve(ctx, inv, failWith(boom))
		assert.Same(t, boom, err)
	})
	t.Run("field error is not rescued", func(t *testing.T) {
		fieldErr := gqlerrors.New("bad field")
		_, err := m.Resolve(ctx, inv, failWith(fieldErr))
		assert.Same(t, fieldErr, err)
	})
}

func TestMiddleware_LastRegisteredWins(t *testing.T) {
	m := rescue.New().
		On(rescue.Any, rescue.Message).
		On(rescue.Any, func(context.Context, *schema.FieldInvocation, error) *gqlerrors.ExecutionError {
			return gqlerrors.New("latest")
		})
	_, err := m.Resolve(context.Background(), &schema.FieldInvocation{}, failWith(errors.New("x")))
	assert.EqualError(t, err, "latest")
}

func TestMiddleware_DeclinedFallsBack(t *testing.T) {
	m := rescue.New().
		On(rescue.Any, rescue.Message).
		On(rescue.Any, func(context.Context, *schema.FieldInvocation, error) *gqlerrors.ExecutionError {
			return nil
		})
	_, err := m.Resolve(context.Background(), &schema.FieldInvocation{}, failWith(errors.New("x")))
	assert.EqualError(t, err, "x")
}

func TestRescueGRPC(t *testing.T) {
	m := rescue.RescueGRPC(rescue.New())
	ctx := context.Background()

	_, err := m.Resolve(ctx, &schema.FieldInvocation{}, failWith(status.Error(codes.NotFound, "no such droid")))
	want := &gqlerrors.ExecutionError{
		Message:    "no such droid",
		Extensions: map[string]any{"code": "NOT_FOUND"},
	}
	if diff := cmp.Diff(want, err); diff != "" {
		t.Fatalf("error mismatch (-want +got):\n%s", diff)
	}

	internal := status.Error(codes.Internal, "db down")
	_, err = m.Resolve(ctx, &schema.FieldInvocation{}, failWith(internal))
	assert.Same(t, internal, err)
}

func TestCodeName(t *testing.T) {
	assert.Equal(t, "DEADLINE_EXCEEDED", rescue.CodeName(codes.DeadlineExceeded))
	assert.Equal(t, "UNAUTHENTICATED", rescue.CodeName(codes.Unauthenticated))
}
