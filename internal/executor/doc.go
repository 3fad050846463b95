// Package executor implements a depth-first GraphQL executor that resolves
// fields through the schema's middleware chain, merges selections by response
// key, and propagates nulls according to Non-Null constraints.
//
// # Overview
//
// The executor walks the selection tree of one operation:
//   - Collect the selections that apply to the current object type, grouping
//     them by response key in order of first occurrence. Fragments apply when
//     their type condition is the object type, an interface it implements, or
//     a union it belongs to. Inclusion directives (@skip, @include) are
//     evaluated with their arguments coerced first.
//   - For each response key, coerce the field arguments, dispatch the resolver
//     through schema.MiddlewareChain and complete the returned value.
//   - Complete values according to their declared type (lists, leafs,
//     objects, abstract types), including Non-Null null-propagation rules.
//   - Accumulate located errors while allowing partial success.
//
// # Preparation
//
// Before execution, the executor:
//  1. Chooses the operation (by name, or by uniqueness when unnamed). A
//     document without operations executes to an empty result.
//  2. Applies variable defaults and rejects missing or null required
//     variables. Errors here stop execution; the result carries no data.
//  3. Determines the root object type from the operation (Query/Mutation).
//
// # Field Dispatch
//
// Each field is resolved with a context carrying a schema.FieldContext: the
// schema, parent type, field definition, selection node, response path and
// variables. Resolvers and middleware read it with schema.GetFieldContext.
// A field without a resolver uses schema.DefaultResolveFunc.
//
// # Value Completion
//
//   - Non-Null: a null result records "Cannot return null for non-nullable
//     field" and propagates null upwards. A null produced by a failure further
//     down has already been recorded and only propagates.
//   - List: complete each element recursively with index-aware paths. A null
//     element for a Non-Null inner type nullifies the entire list value.
//   - Leaf (Scalar/Enum): serialize with schema.Type.CoerceOutput; a value the
//     type cannot represent is a field error.
//   - Abstract (Interface/Union): resolve the concrete object type with
//     schema.Type.ResolveType, check that it is a possible type, then complete
//     as an object.
//   - Object: collect and execute the merged sub-selections.
//
// # Errors and Partial Success
//
// Errors are recorded with message, location and path. A resolver may return
// a *gqlerrors.ExecutionError (or an error wrapping one) to report a failure
// local to its field: the field becomes null and siblings keep executing.
// Argument coercion failures, unresolvable abstract types and unserializable
// leafs are local in the same way.
//
// Any other resolver error, and any panic, is an application failure. It is
// expected to be converted by a middleware such as the rescue package;
// otherwise ExecuteRequest stops and returns it as a *ResolverError.
//
// # Strategies
//
// schema.StrategySerial resolves fields one after another. With
// schema.StrategyParallel sibling fields and the items of composite lists run
// concurrently in an errgroup; every subtree accumulates its own errors, which
// are merged at the join point in selection order, so the error list is
// deterministic. Mutation root fields are always resolved serially.
package executor
