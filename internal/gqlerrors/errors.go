// Package gqlerrors defines the error values collected while executing a
// query and reported in the "errors" entry of a result.
package gqlerrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Location is a line/column position in the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ExecutionError is an error attached to a position of the result tree.
// Resolvers return it (directly or wrapped) to report a failure local to the
// field being resolved.
type ExecutionError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for _, loc := range e.Locations {
		fmt.Fprintf(&b, " (%d:%d)", loc.Line, loc.Column)
	}
	return b.String()
}

// New returns an ExecutionError with a formatted message.
func New(format string, args ...any) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...)}
}

// WithExtensions returns a copy of e carrying the given extension entries.
func (e *ExecutionError) WithExtensions(ext map[string]any) *ExecutionError {
	out := *e
	out.Extensions = make(map[string]any, len(e.Extensions)+len(ext))
	for k, v := range e.Extensions {
		out.Extensions[k] = v
	}
	for k, v := range ext {
		out.Extensions[k] = v
	}
	return &out
}

// AsExecutionError reports whether err is, or wraps, a non-nil
// ExecutionError.
func AsExecutionError(err error) (*ExecutionError, bool) {
	var ee *ExecutionError
	if errors.As(err, &ee) && ee != nil {
		return ee, true
	}
	return nil, false
}

// Normalize returns nil when err is a nil *ExecutionError stored in an
// error interface.
func Normalize(err error) error {
	if ee, ok := err.(*ExecutionError); ok && ee == nil {
		return nil
	}
	return err
}

// LocationOf returns the location of an AST position, if any.
func LocationOf(pos *ast.Position) []Location {
	if pos == nil || pos.Line == 0 {
		return nil
	}
	return []Location{{Line: pos.Line, Column: pos.Column}}
}

// List is an ordered collection of execution errors.
type List []*ExecutionError

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// FromGQLError converts an error reported by the parser or validator.
func FromGQLError(err *gqlerror.Error) *ExecutionError {
	out := &ExecutionError{Message: err.Message}
	for _, loc := range err.Locations {
		out.Locations = append(out.Locations, Location{Line: loc.Line, Column: loc.Column})
	}
	for _, p := range err.Path {
		switch v := p.(type) {
		case ast.PathName:
			out.Path = append(out.Path, string(v))
		case ast.PathIndex:
			out.Path = append(out.Path, int(v))
		}
	}
	if len(err.Extensions) > 0 {
		out.Extensions = err.Extensions
	}
	return out
}

// FromGQLErrorList converts every error of a gqlparser error list.
func FromGQLErrorList(list gqlerror.List) List {
	out := make(List, 0, len(list))
	for _, e := range list {
		out = append(out, FromGQLError(e))
	}
	return out
}
