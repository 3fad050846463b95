package executor

import (
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{
		fields: make([]collectedField, 0),
		index:  make(map[string]int),
	}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		// Append to existing field group
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
	} else {
		// Create new field group
		cfm.index[responseName] = len(cfm.fields)
		cfm.fields = append(cfm.fields, collectedField{
			ResponseName: responseName,
			Fields:       []*language.Field{field},
		})
	}
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields groups the selections that apply to objectType by response
// key, in order of first occurrence.
func (st *executionState) collectFields(acc *errorList, objectType *schema.Type, selectionSet language.SelectionSet, path Path) *collectedFieldMap {
	groupedFields := newCollectedFieldMap()
	visitedFragments := make(map[string]bool)

	st.collectFieldsImpl(acc, objectType, selectionSet, path, groupedFields, visitedFragments)

	return groupedFields
}

// collectFieldsImpl is the recursive implementation of field collection
func (st *executionState) collectFieldsImpl(acc *errorList, objectType *schema.Type, selectionSet language.SelectionSet, path Path, groupedFields *collectedFieldMap, visitedFragments map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !st.shouldIncludeNode(acc, sel.Directives, path) {
				continue
			}

			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}

			groupedFields.add(responseName, sel)

		case *language.InlineFragment:
			if !st.shouldIncludeNode(acc, sel.Directives, path) {
				continue
			}
			if !st.doesFragmentTypeApply(objectType, sel.TypeCondition) {
				continue
			}

			st.collectFieldsImpl(acc, objectType, sel.SelectionSet, path, groupedFields, visitedFragments)

		case *language.FragmentSpread:
			if !st.shouldIncludeNode(acc, sel.Directives, path) {
				continue
			}

			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := st.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				continue
			}
			if !st.doesFragmentTypeApply(objectType, fragmentDef.TypeCondition) {
				continue
			}

			st.collectFieldsImpl(acc, objectType, fragmentDef.SelectionSet, path, groupedFields, visitedFragments)
		}
	}
}

// doesFragmentTypeApply reports whether a fragment on typeCondition applies
// to a value of objectType: the same type, an interface it implements or a
// union it belongs to.
func (st *executionState) doesFragmentTypeApply(objectType *schema.Type, typeCondition string) bool {
	if typeCondition == "" {
		return true
	}
	conditionType := st.schema.GetType(typeCondition)
	if conditionType == nil {
		return false
	}
	return conditionType.HasPossibleType(objectType)
}

// shouldIncludeNode evaluates the inclusion directives (@skip, @include and
// any registered directive with an Include func) of a selection. A directive
// whose arguments cannot be coerced records an error and excludes the node.
func (st *executionState) shouldIncludeNode(acc *errorList, directives language.DirectiveList, path Path) bool {
	for _, d := range directives {
		def := st.schema.Directives[d.Name]
		if def == nil || def.Include == nil {
			continue
		}
		args, err := st.coerceArgumentValues(def.Arguments, d.Arguments)
		if err != nil {
			acc.add(locatedError(err.Error(), d.Position, path))
			return false
		}
		if !def.Include(args) {
			return false
		}
	}
	return true
}
