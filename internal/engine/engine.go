// Package engine runs GraphQL requests against a schema: it parses the query
// text, validates the document and executes the selected operation.
package engine

import (
	"context"
	"errors"
	"time"

	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	executor "github.com/hanpama/gqlcore/internal/executor"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	logging "github.com/hanpama/gqlcore/internal/logging"
	schema "github.com/hanpama/gqlcore/internal/schema"
	validation "github.com/hanpama/gqlcore/internal/validation"
	"go.uber.org/zap"
)

// Request is one GraphQL request.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]any
	// RootValue is the source value of the root fields.
	RootValue any
}

type Option func(*Engine)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithStrategy overrides the schema's execution strategy.
func WithStrategy(strategy schema.Strategy) Option {
	return func(e *Engine) { e.execOpts = append(e.execOpts, executor.WithStrategy(strategy)) }
}

// WithIntrospection enables or disables __schema and __type queries.
// Introspection is enabled by default; __typename is always allowed.
func WithIntrospection(enabled bool) Option {
	return func(e *Engine) { e.introspection = enabled }
}

// WithoutValidation executes documents without validating them first.
func WithoutValidation() Option {
	return func(e *Engine) { e.skipValidation = true }
}

type Engine struct {
	schema         *schema.Schema
	exec           *executor.Executor
	execOpts       []executor.Option
	logger         *zap.Logger
	introspection  bool
	skipValidation bool
}

func New(s *schema.Schema, opts ...Option) *Engine {
	e := &Engine{schema: s, logger: zap.NewNop(), introspection: true}
	for _, opt := range opts {
		opt(e)
	}
	e.exec = executor.NewExecutor(s, e.execOpts...)
	return e
}

func (e *Engine) Schema() *schema.Schema { return e.schema }

// Execute runs req. Syntax, validation, operation and variable errors are
// reported in an aborted result. A resolver failure that no middleware
// handled is returned as an error, with no result.
func (e *Engine) Execute(ctx context.Context, req Request) (*executor.Result, error) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		var perr *language.Error
		if errors.As(err, &perr) {
			return aborted(gqlerrors.FromGQLError(perr)), nil
		}
		return aborted(&gqlerrors.ExecutionError{Message: err.Error()}), nil
	}
	if len(doc.Operations) == 0 {
		return &executor.Result{}, nil
	}

	if !e.skipValidation {
		if errs := validation.Validate(e.schema, doc); len(errs) > 0 {
			return &executor.Result{Errors: errs, Aborted: true}, nil
		}
	}
	if !e.introspection {
		if f := findIntrospection(doc); f != nil {
			return aborted(&gqlerrors.ExecutionError{
				Message:   "GraphQL introspection is not allowed.",
				Locations: gqlerrors.LocationOf(f.Position),
			}), nil
		}
	}

	opType := operationType(doc, req.OperationName)
	start := time.Now()
	eventbus.Publish(ctx, events.QueryStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})

	res, err := e.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, req.RootValue)

	finish := events.QueryFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Err:           err,
		Duration:      time.Since(start),
	}
	if res != nil {
		finish.Errors = res.Errors
	}
	eventbus.Publish(ctx, finish)

	fields := append(logging.RequestFields(ctx),
		zap.String("operation", req.OperationName),
		zap.String("operation_type", opType),
		zap.Duration("duration", finish.Duration),
	)
	if err != nil {
		e.logger.Error("query execution failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	e.logger.Debug("query executed", append(fields, zap.Int("errors", len(res.Errors)))...)
	return res, nil
}

func aborted(err *gqlerrors.ExecutionError) *executor.Result {
	return &executor.Result{Errors: gqlerrors.List{err}, Aborted: true}
}

// operationType names the type of the operation that will run, or "" when
// the name selects none.
func operationType(doc *language.QueryDocument, name string) string {
	if name == "" {
		if len(doc.Operations) == 1 {
			return string(doc.Operations[0].Operation)
		}
		return ""
	}
	if op := doc.Operations.ForName(name); op != nil {
		return string(op.Operation)
	}
	return ""
}

// findIntrospection returns the first __schema or __type field of the
// document, looking through every operation and fragment.
func findIntrospection(doc *language.QueryDocument) *language.Field {
	var walk func(language.SelectionSet) *language.Field
	walk = func(set language.SelectionSet) *language.Field {
		for _, sel := range set {
			switch s := sel.(type) {
			case *language.Field:
				if s.Name == "__schema" || s.Name == "__type" {
					return s
				}
				if f := walk(s.SelectionSet); f != nil {
					return f
				}
			case *language.InlineFragment:
				if f := walk(s.SelectionSet); f != nil {
					return f
				}
			}
		}
		return nil
	}
	for _, op := range doc.Operations {
		if f := walk(op.SelectionSet); f != nil {
			return f
		}
	}
	for _, frag := range doc.Fragments {
		if f := walk(frag.SelectionSet); f != nil {
			return f
		}
	}
	return nil
}
