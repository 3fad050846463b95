package executor

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"golang.org/x/sync/errgroup"
)

// Path addresses a position in the response: field names and list indices.
type Path = []any

// executionState holds the state of one query execution. Everything except
// the error accumulators passed alongside it is read-only once execution
// starts, so subtrees may run concurrently.
type executionState struct {
	schema    *schema.Schema
	document  *language.QueryDocument
	variables map[string]any
	parallel  bool
}

// errorList accumulates the field errors of one subtree.
type errorList struct {
	errs gqlerrors.List
}

func (l *errorList) add(err *gqlerrors.ExecutionError) {
	l.errs = append(l.errs, err)
}

func (l *errorList) merge(other *errorList) {
	l.errs = append(l.errs, other.errs...)
}

// Option configures an Executor.
type Option func(*Executor)

// WithStrategy overrides the schema's execution strategy.
func WithStrategy(strategy schema.Strategy) Option {
	return func(e *Executor) { e.strategy = strategy }
}

type Executor struct {
	schema   *schema.Schema
	strategy schema.Strategy
}

func NewExecutor(s *schema.Schema, opts ...Option) *Executor {
	e := &Executor{schema: s, strategy: s.Strategy}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteRequest executes one operation of document. Field errors are
// reported in the result. A resolver failure that no middleware converted
// into a field error aborts the execution and is returned as a
// *ResolverError.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) (*Result, error) {
	if len(document.Operations) == 0 {
		return &Result{}, nil
	}

	operation, err := getOperation(document, operationName)
	if err != nil {
		return abort(err), nil
	}

	variables, err := coerceVariableValues(operation, variableValues)
	if err != nil {
		return abort(err), nil
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query, "":
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
		if rootType == nil {
			return abort(locatedError("Schema is not configured for mutations.", operation.Position, nil)), nil
		}
	default:
		return abort(locatedError(fmt.Sprintf("Unsupported operation type: %s", operation.Operation), operation.Position, nil)), nil
	}

	state := &executionState{
		schema:    e.schema,
		document:  document,
		variables: variables,
		parallel:  e.strategy == schema.StrategyParallel,
	}
	acc := &errorList{}
	// Mutation root fields run one after another, whatever the strategy.
	serial := operation.Operation == language.Mutation
	data, err := state.executeRoot(ctx, acc, rootType, initialValue, operation.SelectionSet, serial)
	if err != nil {
		return nil, err
	}

	res := &Result{Errors: acc.errs}
	if data != nil {
		res.Data = data
	}
	return res, nil
}

func abort(err error) *Result {
	ee, ok := gqlerrors.AsExecutionError(err)
	if !ok {
		ee = &gqlerrors.ExecutionError{Message: err.Error()}
	}
	return &Result{Errors: gqlerrors.List{ee}, Aborted: true}
}

// executeRoot executes the root selection set. Panics raised outside a
// field, e.g. by an inclusion directive, abort the execution.
func (st *executionState) executeRoot(
	ctx context.Context,
	acc *errorList,
	rootType *schema.Type,
	initialValue any,
	selectionSet language.SelectionSet,
	serial bool,
) (data map[string]any, err error) {
	defer recoverPanic(Path{}, &err)
	return st.executeFields(ctx, acc, rootType, initialValue, selectionSet, Path{}, serial)
}

// executeFields resolves the selection set against objectType. A nil map
// means a non-null field of the object was null, so the object itself is.
func (st *executionState) executeFields(
	ctx context.Context,
	acc *errorList,
	objectType *schema.Type,
	source any,
	selectionSet language.SelectionSet,
	path Path,
	serial bool,
) (map[string]any, error) {
	groupedFields := st.collectFields(acc, objectType, selectionSet, path)
	fields := groupedFields.orderedFields()
	if st.parallel && !serial && len(fields) > 1 {
		return st.executeFieldsParallel(ctx, acc, objectType, source, fields, path)
	}

	resultMap := make(map[string]any, len(fields))
	for _, cf := range fields {
		fieldDef := st.schema.GetField(objectType, cf.Fields[0].Name)
		if fieldDef == nil {
			acc.add(unknownFieldError(objectType, cf, path))
			continue
		}
		v, err := st.executeField(ctx, acc, objectType, fieldDef, source, cf.Fields, appendPath(path, cf.ResponseName))
		if err != nil {
			return nil, err
		}
		if v == nil && fieldDef.Type.IsNonNull() {
			return nil, nil
		}
		resultMap[cf.ResponseName] = v
	}
	return resultMap, nil
}

// executeFieldsParallel resolves sibling fields concurrently. Each field
// collects its errors separately; they are merged in selection order.
func (st *executionState) executeFieldsParallel(
	ctx context.Context,
	acc *errorList,
	objectType *schema.Type,
	source any,
	fields []collectedField,
	path Path,
) (map[string]any, error) {
	type slot struct {
		def   *schema.Field
		value any
		errs  errorList
	}
	slots := make([]slot, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	for i, cf := range fields {
		slots[i].def = st.schema.GetField(objectType, cf.Fields[0].Name)
		if slots[i].def == nil {
			slots[i].errs.add(unknownFieldError(objectType, cf, path))
			continue
		}
		g.Go(func() error {
			v, err := st.executeField(gctx, &slots[i].errs, objectType, slots[i].def, source, cf.Fields, appendPath(path, cf.ResponseName))
			slots[i].value = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resultMap := make(map[string]any, len(fields))
	nulled := false
	for i, cf := range fields {
		acc.merge(&slots[i].errs)
		def := slots[i].def
		if def == nil {
			continue
		}
		if slots[i].value == nil && def.Type.IsNonNull() {
			nulled = true
		}
		resultMap[cf.ResponseName] = slots[i].value
	}
	if nulled {
		return nil, nil
	}
	return resultMap, nil
}

// executeField coerces the arguments of one field, dispatches it through the
// middleware chain and completes the result.
func (st *executionState) executeField(
	ctx context.Context,
	acc *errorList,
	parentType *schema.Type,
	fieldDef *schema.Field,
	source any,
	fields []*language.Field,
	path Path,
) (value any, err error) {
	defer recoverPanic(path, &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	field := fields[0]

	args, err := st.coerceArgumentValues(fieldDef.Arguments, field.Arguments)
	if err != nil {
		acc.add(locatedError(err.Error(), field.Position, path))
		return nil, nil
	}

	ctx = schema.WithFieldContext(ctx, &schema.FieldContext{
		Schema:     st.schema,
		ParentType: parentType,
		Field:      fieldDef,
		AST:        field,
		Path:       path,
		Variables:  st.variables,
	})
	resolved, err := st.resolveField(ctx, parentType, fieldDef, source, args)
	if err != nil {
		if ee, ok := gqlerrors.AsExecutionError(err); ok {
			acc.add(locate(ee, field.Position, path))
			return nil, nil
		}
		return nil, &ResolverError{Path: path, Err: err}
	}

	fi := &fieldInfo{parentType: parentType, def: fieldDef, fields: fields}
	return st.completeValue(ctx, acc, fi, fieldDef.Type, resolved, path)
}

// resolveField runs the middleware chain around the field's resolver. A
// panic is returned as a *PanicError.
func (st *executionState) resolveField(ctx context.Context, parentType *schema.Type, fieldDef *schema.Field, source any, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, newPanicError(r)
		}
	}()
	resolve := fieldDef.Resolve
	if resolve == nil {
		resolve = schema.DefaultResolveFunc(fieldDef.Name)
	}
	inv := &schema.FieldInvocation{
		ParentType: parentType,
		Field:      fieldDef,
		Source:     source,
		Args:       args,
	}
	value, err = st.schema.Middleware.Resolve(ctx, inv, func(ctx context.Context, source any, args map[string]any) (any, error) {
		v, err := resolve(ctx, source, args)
		return v, gqlerrors.Normalize(err)
	})
	return value, gqlerrors.Normalize(err)
}

// recoverPanic turns a panic raised while executing path, outside any
// resolver, into a *ResolverError. It must be deferred directly.
func recoverPanic(path Path, err *error) {
	if r := recover(); r != nil {
		*err = &ResolverError{Path: path, Err: newPanicError(r)}
	}
}

func newPanicError(r any) *PanicError {
	const size = 64 << 10
	buf := make([]byte, size)
	buf = buf[:runtime.Stack(buf, false)]
	return &PanicError{Value: r, Stack: buf}
}

// fieldInfo identifies the field whose value is being completed.
type fieldInfo struct {
	parentType *schema.Type
	def        *schema.Field
	fields     []*language.Field
}

// completeValue completes a resolved value. nil means null: either the
// value was null or a non-null position below it was.
func (st *executionState) completeValue(ctx context.Context, acc *errorList, fi *fieldInfo, fieldType *schema.Type, result any, path Path) (any, error) {
	if fieldType.IsNonNull() {
		if isNullish(result) {
			acc.add(locatedError(
				fmt.Sprintf("Cannot return null for non-nullable field %s.%s.", fi.parentType.Name, fi.def.Name),
				fi.fields[0].Position, path,
			))
			return nil, nil
		}
		// A nil completion already recorded its error below; propagate only.
		return st.completeValue(ctx, acc, fi, fieldType.OfType, result, path)
	}

	if isNullish(result) {
		return nil, nil
	}

	switch fieldType.Kind {
	case schema.TypeKindList:
		return st.completeListValue(ctx, acc, fi, fieldType, result, path)
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized := fieldType.CoerceOutput(result)
		if serialized == nil {
			acc.add(locatedError(
				fmt.Sprintf("%s cannot represent value: %s", fieldType.Name, schema.Inspect(result)),
				fi.fields[0].Position, path,
			))
			return nil, nil
		}
		return serialized, nil
	case schema.TypeKindObject:
		return st.completeObjectValue(ctx, acc, fi, fieldType, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return st.completeAbstractValue(ctx, acc, fi, fieldType, result, path)
	default:
		acc.add(locatedError(fmt.Sprintf("Cannot complete value of unexpected type: %s", fieldType.Kind), fi.fields[0].Position, path))
		return nil, nil
	}
}

// completeListValue completes each item at its own index.
func (st *executionState) completeListValue(ctx context.Context, acc *errorList, fi *fieldInfo, listType *schema.Type, result any, path Path) (any, error) {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			acc.add(locatedError(fmt.Sprintf("Expected list value, got %T", result), fi.fields[0].Position, path))
			return nil, nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := listType.OfType
	completed := make([]any, len(items))
	if st.parallel && len(items) > 1 && !inner.Unwrap().IsLeaf() {
		errs := make([]errorList, len(items))
		g, gctx := errgroup.WithContext(ctx)
		for i, item := range items {
			g.Go(func() (err error) {
				defer recoverPanic(appendPath(path, i), &err)
				v, err := st.completeValue(gctx, &errs[i], fi, inner, item, appendPath(path, i))
				completed[i] = v
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		nulled := false
		for i := range items {
			acc.merge(&errs[i])
			if completed[i] == nil && inner.IsNonNull() {
				nulled = true
			}
		}
		if nulled {
			return nil, nil
		}
		return completed, nil
	}

	for i, item := range items {
		v, err := st.completeValue(ctx, acc, fi, inner, item, appendPath(path, i))
		if err != nil {
			return nil, err
		}
		if v == nil && inner.IsNonNull() {
			// The item's error is recorded; the null moves up to the list.
			return nil, nil
		}
		completed[i] = v
	}
	return completed, nil
}

func (st *executionState) completeObjectValue(ctx context.Context, acc *errorList, fi *fieldInfo, objectType *schema.Type, result any, path Path) (any, error) {
	sub := mergeSelectionSets(fi.fields)
	m, err := st.executeFields(ctx, acc, objectType, result, sub, path, false)
	if err != nil || m == nil {
		return nil, err
	}
	return m, nil
}

func (st *executionState) completeAbstractValue(ctx context.Context, acc *errorList, fi *fieldInfo, abstractType *schema.Type, result any, path Path) (any, error) {
	objectType := abstractType.ResolveType(ctx, result)
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		acc.add(locatedError(
			fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime for field %s.%s. Got: %s",
				abstractType.Name, fi.parentType.Name, fi.def.Name, runtimeName(objectType, result)),
			fi.fields[0].Position, path,
		))
		return nil, nil
	}
	if !abstractType.HasPossibleType(objectType) {
		acc.add(locatedError(
			fmt.Sprintf("Runtime Object type %s is not a possible type for %s.", objectType.Name, abstractType.Name),
			fi.fields[0].Position, path,
		))
		return nil, nil
	}
	return st.completeObjectValue(ctx, acc, fi, objectType, result, path)
}

func runtimeName(resolved *schema.Type, value any) string {
	if resolved != nil {
		return resolved.Name
	}
	if name := schema.RuntimeTypeName(value); name != "" {
		return name
	}
	return fmt.Sprintf("%T", value)
}

// getOperation selects the operation to run: the named one, or the only one
// when no name is given.
func getOperation(document *language.QueryDocument, operationName string) (*language.OperationDefinition, error) {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0], nil
		}
		return nil, &gqlerrors.ExecutionError{Message: "Must provide operation name if query contains multiple operations."}
	}
	if op := document.Operations.ForName(operationName); op != nil {
		return op, nil
	}
	return nil, &gqlerrors.ExecutionError{Message: fmt.Sprintf("Unknown operation named %q.", operationName)}
}

func unknownFieldError(objectType *schema.Type, cf collectedField, path Path) *gqlerrors.ExecutionError {
	field := cf.Fields[0]
	return locatedError(
		fmt.Sprintf("Cannot query field %q on type %q.", field.Name, objectType.Name),
		field.Position, appendPath(path, cf.ResponseName),
	)
}

func locatedError(message string, pos *language.Position, path Path) *gqlerrors.ExecutionError {
	return &gqlerrors.ExecutionError{
		Message:   message,
		Locations: gqlerrors.LocationOf(pos),
		Path:      path,
	}
}

// locate attaches the field position to an error returned by a resolver,
// keeping whatever the resolver already set.
func locate(ee *gqlerrors.ExecutionError, pos *language.Position, path Path) *gqlerrors.ExecutionError {
	out := *ee
	if out.Locations == nil {
		out.Locations = gqlerrors.LocationOf(pos)
	}
	if out.Path == nil {
		out.Path = path
	}
	return &out
}

// FormatPath renders path as a.b[0].c.
func FormatPath(path Path) string {
	var b strings.Builder
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		}
	}
	return b.String()
}

func appendPath(path Path, elem any) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
