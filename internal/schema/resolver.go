package schema

import (
	"context"
	"reflect"
	"strings"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// DefaultResolveFunc returns the resolver used by fields without one: a map
// entry, an exported struct field (matched case-insensitively or by its
// `graphql` tag), or an exported method taking no argument or a context.
func DefaultResolveFunc(name string) ResolveFunc {
	return func(ctx context.Context, source any, _ map[string]any) (any, error) {
		return resolveByName(ctx, source, name)
	}
}

func resolveByName(ctx context.Context, source any, name string) (any, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[name], nil
	}

	rv := reflect.ValueOf(source)
	if v, ok, err := callMethod(ctx, rv, name); ok {
		return v, err
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag := strings.Split(sf.Tag.Get("graphql"), ",")[0]
			if tag == name || (tag == "" && strings.EqualFold(sf.Name, name)) {
				return rv.Field(i).Interface(), nil
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if v.IsValid() {
				return v.Interface(), nil
			}
		}
	}
	return nil, nil
}

func callMethod(ctx context.Context, rv reflect.Value, name string) (any, bool, error) {
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		mt := m.Type
		var in []reflect.Value
		switch {
		case mt.NumIn() == 1:
		case mt.NumIn() == 2 && mt.In(1) == contextType:
			in = []reflect.Value{reflect.ValueOf(ctx)}
		default:
			continue
		}
		switch {
		case mt.NumOut() == 1:
			out := rv.Method(i).Call(in)
			return out[0].Interface(), true, nil
		case mt.NumOut() == 2 && mt.Out(1) == errorType:
			out := rv.Method(i).Call(in)
			var err error
			if !out[1].IsNil() {
				err = out[1].Interface().(error)
			}
			return out[0].Interface(), true, err
		}
	}
	return nil, false, nil
}
