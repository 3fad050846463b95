package executor

import (
	"testing"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_ToMap(t *testing.T) {
	fieldErr := &gqlerrors.ExecutionError{Message: "boom", Path: []any{"a"}}

	tests := []struct {
		name string
		res  *Result
		want map[string]any
	}{
		{
			name: "no operation",
			res:  &Result{},
			want: map[string]any{},
		},
		{
			name: "data only",
			res:  &Result{Data: map[string]any{"a": 1}},
			want: map[string]any{"data": map[string]any{"a": 1}},
		},
		{
			name: "data with errors",
			res:  &Result{Data: map[string]any{"a": nil}, Errors: gqlerrors.List{fieldErr}},
			want: map[string]any{"data": map[string]any{"a": nil}, "errors": gqlerrors.List{fieldErr}},
		},
		{
			name: "null root data",
			res:  &Result{Errors: gqlerrors.List{fieldErr}},
			want: map[string]any{"data": nil, "errors": gqlerrors.List{fieldErr}},
		},
		{
			name: "aborted",
			res:  &Result{Errors: gqlerrors.List{fieldErr}, Aborted: true},
			want: map[string]any{"errors": gqlerrors.List{fieldErr}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.ToMap())
		})
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	res := &Result{
		Data: map[string]any{"hero": nil},
		Errors: gqlerrors.List{{
			Message:   "Cannot return null for non-nullable field Character.name.",
			Locations: []gqlerrors.Location{{Line: 1, Column: 10}},
			Path:      []any{"hero", "name"},
		}},
	}
	b, err := res.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": {"hero": null},
		"errors": [{
			"message": "Cannot return null for non-nullable field Character.name.",
			"locations": [{"line": 1, "column": 10}],
			"path": ["hero", "name"]
		}]
	}`, string(b))

	b, err = (&Result{}).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))
}
