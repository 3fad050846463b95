package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var String = NewScalar(
	"String",
	"The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	func(v any) any {
		if s, ok := v.(string); ok {
			return s
		}
		return nil
	},
	func(v any) any {
		switch val := v.(type) {
		case string:
			return val
		case fmt.Stringer:
			return val.String()
		case []byte:
			return string(val)
		}
		return fmt.Sprint(v)
	},
)

var Int = NewScalar(
	"Int",
	"The `Int` scalar type represents non-fractional signed whole numeric values.",
	coerceInt,
	func(v any) any {
		if s, ok := v.(string); ok {
			n, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return nil
			}
			return int(n)
		}
		return coerceInt(v)
	},
)

// coerceInt accepts whole numbers within the 32-bit range.
func coerceInt(v any) any {
	n, ok := toInt(v)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return nil
	}
	return int(n)
}

var Float = NewScalar(
	"Float",
	"The `Float` scalar type represents signed double-precision fractional values.",
	func(v any) any {
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil
	},
	func(v any) any {
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil
	},
)

var Boolean = NewScalar(
	"Boolean",
	"The `Boolean` scalar type represents `true` or `false`.",
	func(v any) any {
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	},
	func(v any) any {
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	},
)

var ID = NewScalar(
	"ID",
	"The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	coerceID,
	coerceID,
)

func coerceID(v any) any {
	if s, ok := v.(string); ok {
		return s
	}
	if n, ok := toInt(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return nil
}

// builtinScalars are provided by every schema and by the validator prelude.
var builtinScalars = []*Type{String, Int, Float, Boolean, ID}

func isBuiltinScalar(t *Type) bool {
	for _, b := range builtinScalars {
		if t == b {
			return true
		}
	}
	return false
}

// toInt accepts Go integers and floats holding a whole number.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case jsoniter.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case jsoniter.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        NonNullOf(Boolean),
		},
	},
	Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	Include:   func(args map[string]any) bool { return args["if"] == true },
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        NonNullOf(Boolean),
		},
	},
	Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	Include:   func(args map[string]any) bool { return args["if"] != true },
}

var deprecatedDirective = &Directive{
	Name:        "deprecated",
	Description: "Marks an element of a GraphQL schema as no longer supported.",
	Arguments: []*InputValue{
		{
			Name:         "reason",
			Description:  "Explains why this element was deprecated.",
			Type:         String,
			DefaultValue: "No longer supported",
		},
	},
	Locations: []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
}

var builtinDirectives = []*Directive{includeDirective, skipDirective, deprecatedDirective}

func isBuiltinDirective(d *Directive) bool {
	for _, b := range builtinDirectives {
		if d == b {
			return true
		}
	}
	return false
}
