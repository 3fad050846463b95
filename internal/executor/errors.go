package executor

import "fmt"

// ResolverError is an application failure that no middleware converted
// into a field error. It aborts the whole execution.
type ResolverError struct {
	Path Path
	Err  error
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("resolving %s: %v", FormatPath(e.Path), e.Err)
}

func (e *ResolverError) Unwrap() error { return e.Err }

// PanicError is a recovered resolver panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
