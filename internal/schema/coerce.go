package schema

import (
	"fmt"
	"reflect"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// CoercionError reports an input value that cannot be represented by a type.
type CoercionError struct {
	Value    any
	TypeName string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("Couldn't coerce %s to %s", Inspect(e.Value), e.TypeName)
}

// CoerceInput converts a literal or variable value into its internal form.
// It returns nil when the value has no representation in t.
func (t *Type) CoerceInput(raw any) any {
	v, ok := coerceInput(t, raw)
	if !ok {
		return nil
	}
	return v
}

// CoerceInputStrict is CoerceInput for callers that cannot accept a missing
// value: a failed coercion, or null for a non-null type, is an error.
func (t *Type) CoerceInputStrict(raw any) (any, error) {
	v, ok := coerceInput(t, raw)
	if !ok {
		return nil, &CoercionError{Value: raw, TypeName: t.Unwrap().Name}
	}
	return v, nil
}

func coerceInput(t *Type, raw any) (any, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind == TypeKindNonNull {
		if raw == nil {
			return nil, false
		}
		v, ok := coerceInput(t.OfType, raw)
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}
	if raw == nil {
		return nil, true
	}

	switch t.Kind {
	case TypeKindList:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			// A single value is accepted as a list of one.
			v, ok := coerceInput(t.OfType, raw)
			if !ok {
				return nil, false
			}
			return []any{v}, true
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, ok := coerceInput(t.OfType, rv.Index(i).Interface())
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true
	case TypeKindScalar:
		if t.CoerceIn == nil {
			return raw, true
		}
		v := t.CoerceIn(raw)
		return v, v != nil
	case TypeKindEnum:
		name, ok := raw.(string)
		if !ok {
			return nil, false
		}
		for _, ev := range t.EnumValues {
			if ev.Name == name {
				return ev.internal(), true
			}
		}
		return nil, false
	case TypeKindInputObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		for key := range obj {
			if t.InputField(key) == nil {
				return nil, false
			}
		}
		out := make(map[string]any, len(t.InputFields))
		for _, f := range t.InputFields {
			fv, present := obj[f.Name]
			if !present {
				if f.DefaultValue == nil {
					if f.Type.IsNonNull() {
						return nil, false
					}
					continue
				}
				fv = f.DefaultValue
			}
			v, ok := coerceInput(f.Type, fv)
			if !ok {
				return nil, false
			}
			out[f.Name] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// CoerceOutput converts an internal leaf value to its serialized form,
// returning nil when it cannot be represented.
func (t *Type) CoerceOutput(value any) any {
	if t == nil || value == nil {
		return nil
	}
	switch t.Kind {
	case TypeKindNonNull:
		return t.OfType.CoerceOutput(value)
	case TypeKindScalar:
		if t.CoerceOut == nil {
			return value
		}
		return t.CoerceOut(value)
	case TypeKindEnum:
		if !reflect.TypeOf(value).Comparable() {
			return nil
		}
		for _, ev := range t.EnumValues {
			if ev.internal() == value {
				return ev.Name
			}
		}
		return nil
	default:
		return nil
	}
}

// Inspect renders a value for an error message, close to the way it would
// appear in a query.
func Inspect(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	}
	if b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
