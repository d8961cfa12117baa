package tree

import (
	"reflect"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
)

// FieldTag is the struct tag naming the tree key of a field.
const FieldTag = "forji"

// setField writes value to field key of the object bound to n, if the
// object declares the field or the type accepts any field.
func (ot *ObjectType) setField(n *Node, key string, value any) {
	obj := n.obj
	var declared bool
	fs, explicit := obj.(FieldSetter)
	if explicit {
		declared = fs.HasField(key)
	} else {
		declared = decodeField(obj, key, value)
	}
	if !declared && !ot.AllowUninitializedFields {
		return
	}
	if explicit {
		fs.SetField(key, value)
	}
	if u, ok := obj.(Updater); ok {
		u.Updated(key, value)
	}
}

// decodeField stores value in the struct field of obj named key, by its
// forji tag or its capitalized name, and reports whether obj has such a
// field. Numbers, sequences and maps are converted to the field's type;
// a value which does not fit leaves the field zero.
func decodeField(obj any, key string, value any) bool {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return false
	}
	// clear the field first, so interface and pointer fields take the
	// new value instead of decoding it into the old one.
	md, err := decode(obj, key, nil)
	if err != nil || slices.Contains(md.Unused, key) {
		return false
	}
	if value != nil {
		decode(obj, key, value)
	}
	return true
}

func decode(obj any, key string, value any) (*mapstructure.Metadata, error) {
	md := &mapstructure.Metadata{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          FieldTag,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Squash:           true,
		Metadata:         md,
		MatchName:        matchName,
		Result:           obj,
	})
	if err != nil {
		return nil, err
	}
	return md, dec.Decode(map[string]any{key: value})
}

func matchName(key, field string) bool {
	return key == field || capitalize(key) == field
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
