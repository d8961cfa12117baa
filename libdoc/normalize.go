package libdoc

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Normalize converts v into the document model. Maps with string-like
// keys become map[string]any, slices and arrays become []any, named
// scalar types are reduced to their underlying kind and json.Number
// becomes int64 or float64. Values with no document representation are
// returned unchanged and behave as opaque scalars.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, string, float64, int, int64:
		return v
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			res[k] = Normalize(e)
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = Normalize(e)
		}
		return res
	}
	return normalizeReflect(reflect.ValueOf(v), v)
}

func normalizeReflect(rv reflect.Value, orig any) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		res := make([]any, rv.Len())
		for i := range res {
			res[i] = Normalize(rv.Index(i).Interface())
		}
		return res
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		res := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			res[mapKey(iter.Key())] = Normalize(iter.Value().Interface())
		}
		return res
	}
	return orig
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprintf("%v", k.Interface())
}

// Clone returns a deep copy of the maps and slices of a document.
// Scalars are shared.
func Clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			res[k] = Clone(e)
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = Clone(e)
		}
		return res
	}
	return v
}
