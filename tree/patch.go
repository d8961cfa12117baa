package tree

import (
	"strconv"

	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/libdoc"
)

// patch merges v into n and returns the nodes which changed, descendants
// before their ancestors, n last if anything changed.
func (n *Node) patch(v any) []*Node {
	var (
		changed  []*Node
		modified bool
	)
	switch x := v.(type) {
	case map[string]any:
		modified = n.setKind(MapKind)
		for _, k := range sortedKeys(x) {
			c := n.m[k]
			if c == nil {
				c = newNode(n.tree, n, k)
				n.m[k] = c
				modified = true
			}
			changed = append(changed, c.patch(x[k])...)
		}

	case []any:
		modified = n.setKind(SliceKind)
		if libdoc.IsAppendArray(x) {
			for _, e := range x {
				c := newNode(n.tree, n, strconv.Itoa(len(n.sl)))
				n.sl = append(n.sl, c)
				modified = true
				changed = append(changed, c.patch(libdoc.WithoutAppendMarker(e))...)
			}
			break
		}
		for i, e := range x {
			if i >= len(n.sl) {
				n.sl = append(n.sl, newNode(n.tree, n, strconv.Itoa(i)))
				modified = true
			}
			changed = append(changed, n.sl[i].patch(e)...)
		}
		if len(n.sl) > len(x) {
			for _, c := range n.sl[len(x):] {
				c.discard()
			}
			clear(n.sl[len(x):])
			n.sl = n.sl[:len(x)]
			modified = true
		}

	default:
		modified = n.setKind(ValueKind)
		if !libdoc.Equal(n.value, v) {
			modified = true
		}
		n.value = v
	}

	if modified && debug.Patch() {
		debug.Logf("patch %s: %s\n", n, n.kind)
	}
	if modified || len(changed) > 0 {
		changed = append(changed, n)
	}
	return changed
}
