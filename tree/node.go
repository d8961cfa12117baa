package tree

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/signadot/forjitree/libdoc"
)

// Kind is the shape of a node.
type Kind int

const (
	MapKind Kind = iota
	SliceKind
	ValueKind
)

func (k Kind) String() string {
	switch k {
	case MapKind:
		return "map"
	case SliceKind:
		return "slice"
	case ValueKind:
		return "value"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one addressable point of a tree.
type Node struct {
	tree      *Tree
	parent    *Node
	parentKey string

	kind  Kind
	m     map[string]*Node
	sl    []*Node
	value any

	obj     Object
	objType *ObjectType

	// detached is set once the node is no longer part of its tree.
	detached bool
}

func newNode(t *Tree, parent *Node, key string) *Node {
	return &Node{tree: t, parent: parent, parentKey: key, kind: ValueKind}
}

// setKind resets n to an empty node of kind k, destroying its content, and
// reports whether the kind changed.
func (n *Node) setKind(k Kind) bool {
	if n.kind == k {
		return false
	}
	n.destroyObject(true)
	for _, c := range n.children() {
		c.detach()
	}
	n.m, n.sl, n.value = nil, nil, nil
	n.kind = k
	if k == MapKind {
		n.m = map[string]*Node{}
	}
	return true
}

func (n *Node) detach() {
	n.detached = true
	for _, c := range n.children() {
		c.detach()
	}
}

// discard destroys every object of the subtree and detaches it.
func (n *Node) discard() {
	n.destroyObject(true)
	n.detach()
}

// children returns the direct children, maps in key order.
func (n *Node) children() []*Node {
	switch n.kind {
	case MapKind:
		res := make([]*Node, 0, len(n.m))
		for _, k := range n.keys() {
			res = append(res, n.m[k])
		}
		return res
	case SliceKind:
		return slices.Clone(n.sl)
	}
	return nil
}

func (n *Node) keys() []string {
	return sortedKeys(n.m)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (n *Node) child(key string) *Node {
	switch n.kind {
	case MapKind:
		return n.m[key]
	case SliceKind:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n.sl) {
			return nil
		}
		return n.sl[i]
	}
	return nil
}

func (n *Node) lookup(keys []string) *Node {
	cur := n
	for _, k := range keys {
		if cur = cur.child(k); cur == nil {
			return nil
		}
	}
	return cur
}

// keyPath returns the keys leading from the root to n.
func (n *Node) keyPath() []string {
	var keys []string
	for p := n; p.parent != nil; p = p.parent {
		keys = append(keys, p.parentKey)
	}
	slices.Reverse(keys)
	return keys
}

// walk calls f on every descendant of n in pre-order, n excluded.
func (n *Node) walk(f func(*Node)) {
	for _, c := range n.children() {
		f(c)
		c.walk(f)
	}
}

// Value returns the document held by the subtree rooted at n.
func (n *Node) Value() any {
	switch n.kind {
	case MapKind:
		m := make(map[string]any, len(n.m))
		for k, c := range n.m {
			m[k] = c.Value()
		}
		return m
	case SliceKind:
		sl := make([]any, len(n.sl))
		for i, c := range n.sl {
			sl[i] = c.Value()
		}
		return sl
	}
	return n.value
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Parent returns the parent of n, nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the root of the tree owning n.
func (n *Node) Root() *Node {
	return n.tree.root
}

func (n *Node) Tree() *Tree {
	return n.tree
}

// Name returns the key of n under its parent, or the tree name at the root.
func (n *Node) Name() string {
	if n.parent == nil {
		return n.tree.name
	}
	return n.parentKey
}

// Path returns the '/' separated keys from the root to n. The root path
// is empty.
func (n *Node) Path() string {
	return strings.Join(n.keyPath(), "/")
}

func (n *Node) String() string {
	return "/" + n.Path()
}

// Child returns the child stored under key, or sequence index key.
func (n *Node) Child(key string) *Node {
	return n.child(key)
}

// Children returns the direct children of n, maps in key order.
func (n *Node) Children() []*Node {
	return n.children()
}

// Object returns the object bound to n, if any.
func (n *Node) Object() Object {
	return n.obj
}

// ObjectType returns the type of the object bound to n, if any.
func (n *Node) ObjectType() *ObjectType {
	return n.objType
}

// Set merges v into the tree at the position of n.
func (n *Node) Set(v any) []*Node {
	return n.tree.Set(libdoc.PatchAtKeys(n.keyPath(), v, false))
}

// CleanNulls removes the null valued children of the maps of the subtree
// of n, the whole subtree when recursive is set. Nothing is synchronized.
func (n *Node) CleanNulls(recursive bool) {
	var subs []*Node
	if recursive {
		n.walk(func(c *Node) { subs = append(subs, c) })
	} else {
		subs = n.children()
	}
	for _, c := range subs {
		if c.kind != ValueKind || c.value != nil {
			continue
		}
		p := c.parent
		if p.kind != MapKind || p.m[c.parentKey] != c {
			continue
		}
		delete(p.m, c.parentKey)
		c.discard()
	}
}
