// Package events defines the lifecycle events published on the event bus.
package events

import (
	"time"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
)

// QueryStart is emitted after a query was parsed and validated, before its
// operation is executed.
type QueryStart struct {
	Query         string
	OperationName string
	OperationType string
}

// QueryFinish is emitted once execution of a query ends, whether it
// produced a result or failed.
type QueryFinish struct {
	Query         string
	OperationName string
	OperationType string
	// Errors are the errors reported in the result.
	Errors gqlerrors.List
	// Err is set when the execution was aborted by an unhandled resolver
	// failure.
	Err      error
	Duration time.Duration
}
