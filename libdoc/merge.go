package libdoc

// Merge merges src into dst recursively: maps are merged key by key,
// anything else in src replaces what dst holds.
func Merge(dst, src map[string]any) {
	for k, sv := range src {
		sm, sIsMap := sv.(map[string]any)
		dm, dIsMap := dst[k].(map[string]any)
		if sIsMap && dIsMap {
			Merge(dm, sm)
			continue
		}
		dst[k] = sv
	}
}

// MergeChanges folds the delivery next into the accumulated changes acc
// and returns the result, so that merging the result into a tree has the
// same effect as merging acc and then next. Maps merge key by key, append
// mode sequences are concatenated onto accumulated sequences, anything else
// replaces. acc is modified in place where possible; next is
// never modified.
func MergeChanges(acc, next any) any {
	switch n := next.(type) {
	case map[string]any:
		a, ok := acc.(map[string]any)
		if !ok {
			return Clone(n)
		}
		for k, v := range n {
			if prev, has := a[k]; has {
				a[k] = MergeChanges(prev, v)
			} else {
				a[k] = Clone(v)
			}
		}
		return a
	case []any:
		a, ok := acc.([]any)
		if !ok || !IsAppendArray(n) {
			return Clone(n)
		}
		if IsAppendArray(a) {
			for _, e := range n {
				a = append(a, Clone(e))
			}
			return a
		}
		// a plain sequence followed by appends stays plain
		for _, e := range n {
			a = append(a, WithoutAppendMarker(Clone(e)))
		}
		return a
	}
	return next
}
