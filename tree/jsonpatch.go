package tree

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
)

// ApplyJSONPatch applies the RFC 6902 patch ops to the value of the tree
// and merges the result back. Map keys the patch removes are discarded
// along with their objects, which a plain merge never does. An empty
// tree is patched as the empty object.
func (t *Tree) ApplyJSONPatch(ops []byte) ([]*Node, error) {
	patch, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrJSONPatch, err)
	}
	v := t.GetValue()
	if v == nil {
		// an empty tree patches as an empty object.
		v = map[string]any{}
	}
	d, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode tree: %w", ErrJSONPatch, err)
	}
	out, err := patch.Apply(d)
	if err != nil {
		return nil, fmt.Errorf("%w: apply: %w", ErrJSONPatch, err)
	}
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode result: %w", ErrJSONPatch, err)
	}
	if prune(t.root, doc) {
		t.modified = true
	}
	return t.Set(doc), nil
}

// prune discards the children of the maps of n whose keys doc lacks.
func prune(n *Node, doc any) bool {
	pruned := false
	switch n.kind {
	case MapKind:
		m, ok := doc.(map[string]any)
		if !ok {
			return false
		}
		for _, k := range n.keys() {
			v, keep := m[k]
			if !keep {
				n.m[k].discard()
				delete(n.m, k)
				pruned = true
				continue
			}
			pruned = prune(n.m[k], v) || pruned
		}
	case SliceKind:
		sl, ok := doc.([]any)
		if !ok {
			return false
		}
		for i, c := range n.sl {
			if i < len(sl) {
				pruned = prune(c, sl[i]) || pruned
			}
		}
	}
	return pruned
}
