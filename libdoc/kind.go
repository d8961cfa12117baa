package libdoc

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind is the document kind of a value.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
	OtherKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	}
	return "other"
}

// KindOf returns the document kind of v. Values which are not part of the
// document model report OtherKind.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return NullKind
	case bool:
		return BoolKind
	case string:
		return StringKind
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return NumberKind
	case []any:
		return ArrayKind
	case map[string]any:
		return ObjectKind
	}
	return OtherKind
}

// Equal reports whether two scalars are the same document value. Values of
// different kinds are never equal; numbers compare numerically whatever
// their Go type.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case NullKind:
		return true
	case NumberKind:
		return numberEqual(a, b)
	case BoolKind, StringKind:
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func numberEqual(a, b any) bool {
	ia, aInt := asInt(a)
	ib, bInt := asInt(b)
	if aInt && bInt {
		return ia == ib
	}
	fa, _ := Float(a)
	fb, _ := Float(b)
	return fa == fb
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), x <= math.MaxInt64
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), x <= math.MaxInt64
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	}
	return 0, false
}

// Float converts a number (or a numeric string) to float64.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// Format renders a scalar the way it is compared in query filters: null,
// true/false, shortest number form, or the string itself.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	}
	if i, ok := asInt(v); ok {
		return strconv.FormatInt(i, 10)
	}
	if f, ok := Float(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(d)
}

// Truthy reports whether v counts as set: anything but null, false, zero
// and the empty string.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if KindOf(v) == NumberKind {
		f, _ := Float(v)
		return f != 0
	}
	return true
}
