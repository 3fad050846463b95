package executor

import (
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	jsoniter "github.com/json-iterator/go"
)

// Result represents the result of executing a GraphQL query
type Result struct {
	Data   any            `json:"data"`
	Errors gqlerrors.List `json:"errors,omitempty"`
	// Aborted is set when the request failed before execution (syntax,
	// validation, operation or variable errors); such results carry no data.
	Aborted bool `json:"-"`
}

// ToMap returns the response shape: {} for a document without operations,
// only "errors" for an aborted request, otherwise "data" plus "errors" when
// any were recorded.
func (r *Result) ToMap() map[string]any {
	out := make(map[string]any, 2)
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	if r.Aborted || (r.Data == nil && len(r.Errors) == 0) {
		return out
	}
	out["data"] = r.Data
	return out
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(r.ToMap())
}
