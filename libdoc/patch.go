package libdoc

import "strings"

// ObjectKey is the reserved map key naming the type of a subtree.
const ObjectKey = "object"

// AppendArrayKey marks a sequence element which switches its sequence to
// append mode.
const AppendArrayKey = "appendArray"

// PatchAt wraps v in nested single key maps so that it lands at path when
// merged at the root. Path segments are separated by '/'; the empty path
// returns v itself.
//
// With resolveTypes, a segment of the form "key:Type" produces the key
// "key" and sets the reserved object key of the map created for it to
// "Type".
func PatchAt(path string, v any, resolveTypes bool) any {
	if path == "" {
		return v
	}
	return PatchAtKeys(strings.Split(path, "/"), v, resolveTypes)
}

// PatchAtKeys is PatchAt with the path already split into keys.
func PatchAtKeys(keys []string, v any, resolveTypes bool) any {
	if len(keys) == 0 {
		return v
	}
	root := map[string]any{}
	cur := root
	for i, k := range keys {
		typeName := ""
		if resolveTypes {
			if j := strings.IndexByte(k, ':'); j >= 0 {
				k, typeName = k[:j], k[j+1:]
			}
		}
		if i == len(keys)-1 {
			if m, ok := v.(map[string]any); ok && typeName != "" {
				m = Clone(m).(map[string]any)
				m[ObjectKey] = typeName
				cur[k] = m
			} else {
				cur[k] = v
			}
			break
		}
		next := map[string]any{}
		if typeName != "" {
			next[ObjectKey] = typeName
		}
		cur[k] = next
		cur = next
	}
	return root
}

// IsAppendArray reports whether seq is an append mode sequence: it is
// non-empty and its first element is a map carrying a truthy appendArray
// marker.
func IsAppendArray(seq []any) bool {
	if len(seq) == 0 {
		return false
	}
	m, ok := seq[0].(map[string]any)
	if !ok {
		return false
	}
	return Truthy(m[AppendArrayKey])
}

// WithoutAppendMarker returns v without its appendArray marker, copying
// the map if it had one.
func WithoutAppendMarker(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if _, has := m[AppendArrayKey]; !has {
		return v
	}
	res := make(map[string]any, len(m)-1)
	for k, e := range m {
		if k != AppendArrayKey {
			res[k] = e
		}
	}
	return res
}
