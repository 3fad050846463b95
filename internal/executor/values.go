package executor

import (
	"fmt"
	"strconv"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// coerceVariableValues applies variable defaults and checks that required
// variables are present. Values stay raw; they are coerced strictly where
// they are used as arguments.
func coerceVariableValues(
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if varDef.DefaultValue != nil {
				coerced[name] = valueFromAST(varDef.DefaultValue, nil)
				continue
			}
			if t.NonNull {
				return nil, locatedError(
					fmt.Sprintf("Variable \"$%s\" of required type \"%s\" was not provided.", name, t.String()),
					varDef.Position, nil,
				)
			}
			continue
		}
		if val == nil && t.NonNull {
			return nil, locatedError(
				fmt.Sprintf("Variable \"$%s\" of non-null type \"%s\" must not be null.", name, t.String()),
				varDef.Position, nil,
			)
		}
		coerced[name] = val
	}
	return coerced, nil
}

// coerceArgumentValues coerces the arguments given for a field or directive
// against their definitions. The first failure is returned; its message
// names the raw value and the expected type.
func (st *executionState) coerceArgumentValues(
	argDefs []*schema.InputValue,
	arguments language.ArgumentList,
) (map[string]any, error) {
	coerced := make(map[string]any, len(argDefs))
	for _, argDef := range argDefs {
		raw, present := st.argumentValue(arguments.ForName(argDef.Name))
		if !present {
			if argDef.DefaultValue != nil {
				raw = argDef.DefaultValue
			} else if argDef.Type.IsNonNull() {
				return nil, &gqlerrors.ExecutionError{
					Message: fmt.Sprintf("Argument %q of required type %q was not provided.", argDef.Name, argDef.Type.String()),
				}
			} else {
				continue
			}
		}
		v, err := argDef.Type.CoerceInputStrict(raw)
		if err != nil {
			return nil, err
		}
		coerced[argDef.Name] = v
	}
	return coerced, nil
}

// argumentValue returns the raw value of an argument. A missing argument, or
// one given as a variable that was not provided, is absent.
func (st *executionState) argumentValue(arg *language.Argument) (any, bool) {
	if arg == nil || arg.Value == nil {
		return nil, false
	}
	if arg.Value.Kind == language.Variable {
		v, ok := st.variables[arg.Value.Raw]
		return v, ok
	}
	return valueFromAST(arg.Value, st.variables), true
}

// valueFromAST converts an AST value to a Go value, substituting variables.
// Inside an input object a field bound to a missing variable is omitted.
func valueFromAST(value *language.Value, variables map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		return variables[value.Raw]
	case language.IntValue:
		if iv, err := strconv.ParseInt(value.Raw, 10, 64); err == nil {
			return int(iv)
		}
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, variables)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			if f.Value != nil && f.Value.Kind == language.Variable {
				if _, ok := variables[f.Value.Raw]; !ok {
					continue
				}
			}
			m[f.Name] = valueFromAST(f.Value, variables)
		}
		return m
	default:
		return nil
	}
}
