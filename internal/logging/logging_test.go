package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	reqid "github.com/hanpama/gqlcore/internal/reqid"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New("warn", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = New("loud", true)
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func invocation() *schema.FieldInvocation {
	return &schema.FieldInvocation{
		ParentType: schema.NewObject("Query", ""),
		Field:      schema.NewField("hero", schema.String, nil),
	}
}

func TestFieldLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mw := FieldLogging(zap.New(core), 0)

	ctx := reqid.WithID(context.Background(), "req-1")
	ctx = schema.WithFieldContext(ctx, &schema.FieldContext{Path: []any{"hero"}})

	v, err := mw(ctx, invocation(), func(context.Context) (any, error) { return "R2-D2", nil })
	require.NoError(t, err)
	assert.Equal(t, "R2-D2", v)
	assert.Zero(t, logs.Len())

	boom := errors.New("boom")
	_, err = mw(ctx, invocation(), func(context.Context) (any, error) { return nil, boom })
	assert.Same(t, boom, err)

	_, err = mw(ctx, invocation(), func(context.Context) (any, error) { return nil, gqlerrors.New("denied") })
	assert.Error(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "field resolution failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "Query.hero", fields["field"])
	assert.Equal(t, false, fields["field_error"])
	assert.Equal(t, true, entries[1].ContextMap()["field_error"])
}

func TestFieldLogging_Slow(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mw := FieldLogging(zap.New(core), time.Millisecond)

	_, err := mw(context.Background(), invocation(), func(context.Context) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return "late", nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "slow field resolution", logs.All()[0].Message)
}
