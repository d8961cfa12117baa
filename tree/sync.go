package tree

import (
	"slices"

	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/libdoc"
)

// synchronize rebinds the object of n to the type named by its object key
// and pushes the value of n into the object of its parent. It reports
// whether a new object was bound.
func (n *Node) synchronize() bool {
	if n.detached {
		return false
	}
	var target *ObjectType
	if n.kind == MapKind {
		if tn := n.m[libdoc.ObjectKey]; tn != nil && tn.kind == ValueKind {
			if name, ok := tn.value.(string); ok && name != "" {
				target = n.tree.types[name]
				if target == nil {
					n.tree.deferNode(n, name)
				}
			}
		}
	}

	bound := false
	if target != n.objType || (n.objType != nil && n.objType.Immutable) || (target != nil && target.Immutable) {
		if n.objType != nil {
			n.destroyObject(false)
		}
		if target != nil {
			n.bind(target)
			bound = true
		}
	}

	if p := n.parent; p != nil && p.kind == MapKind && p.objType != nil && n.parentKey != libdoc.ObjectKey {
		p.objType.setField(p, n.parentKey, n.Value())
	}
	return bound
}

func (n *Node) bind(ot *ObjectType) {
	if debug.Sync() {
		debug.Logf("bind %s: %s\n", n, ot.Name)
	}
	n.objType = ot
	n.obj = ot.New(n)
	for _, k := range sortedKeys(ot.Defaults) {
		ot.setField(n, k, libdoc.Clone(ot.Defaults[k]))
	}
	for _, k := range n.keys() {
		if k == libdoc.ObjectKey {
			continue
		}
		ot.setField(n, k, n.m[k].Value())
	}
	if c, ok := n.obj.(Creator); ok {
		c.Created()
	}
}

// destroyObject unbinds the object of n, first those of its descendants
// when recurse is set.
func (n *Node) destroyObject(recurse bool) {
	if recurse {
		for _, c := range n.children() {
			c.destroyObject(true)
		}
	}
	if n.objType == nil {
		return
	}
	if debug.Sync() {
		debug.Logf("destroy %s: %s\n", n, n.objType.Name)
	}
	if d, ok := n.obj.(Destroyer); ok {
		d.Destroyed()
	}
	n.obj, n.objType = nil, nil
}

func (n *Node) callCreatedTree() {
	if n.objType != nil {
		if c, ok := n.obj.(TreeCreator); ok {
			c.CreatedTree()
		}
	}
	for _, c := range n.children() {
		c.callCreatedTree()
	}
}

// sync synchronizes the changed nodes of one merge, ancestors first, and
// runs the creation callbacks of the objects it bound. Every call works on
// its own lists so that callbacks may merge or register types again.
func (t *Tree) sync(changed []*Node) {
	var bound []*Node
	for i := len(changed) - 1; i >= 0; i-- {
		if changed[i].synchronize() {
			bound = append(bound, changed[i])
		}
	}
	for i := len(bound) - 1; i >= 0; i-- {
		if c, ok := bound[i].obj.(ChildrenCreator); ok {
			c.CreatedChildren()
		}
	}
	if !t.created {
		return
	}
	for _, n := range bound {
		if c, ok := n.obj.(TreeCreator); ok {
			c.CreatedTree()
		}
	}
}

type pendingPath struct {
	path string
	keys []string
}

func (t *Tree) deferNode(n *Node, typeName string) {
	keys := n.keyPath()
	p := n.Path()
	for _, pp := range t.unregistered {
		if pp.path == p {
			return
		}
	}
	t.log.Debug("deferring unregistered type", "tree", t.name, "path", p, "type", typeName)
	t.unregistered = append(t.unregistered, pendingPath{path: p, keys: keys})
}

// resyncUnregistered retries the nodes whose types were not registered.
// Paths which still do not resolve are recorded again.
func (t *Tree) resyncUnregistered() {
	if len(t.unregistered) == 0 {
		return
	}
	pending := t.unregistered
	t.unregistered = nil
	var nodes []*Node
	for _, pp := range pending {
		if n := t.root.lookup(pp.keys); n != nil {
			nodes = append(nodes, n)
		}
	}
	// sync walks its list backwards
	slices.Reverse(nodes)
	t.sync(nodes)
}
