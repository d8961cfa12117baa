package tree

import "github.com/signadot/forjitree/libdoc"

// TypeDeclName is the name of the built-in type declaring new types from
// tree data. The declared type is named after the node's key, derives
// from the type named by the node's "base" field and takes the node's
// other fields as defaults.
const TypeDeclName = "Type"

const baseKey = "base"

type typeDecl struct {
	node *Node
	Base string `forji:"base"`

	registered *ObjectType
}

func typeDeclType() *ObjectType {
	return &ObjectType{
		Name:      TypeDeclName,
		New:       func(n *Node) Object { return &typeDecl{node: n} },
		Immutable: true,
	}
}

func (d *typeDecl) Created() {
	t := d.node.tree
	name := d.node.Name()
	base := t.GetType(d.Base)
	if base == nil {
		t.log.Warn("base type not found", "tree", t.name, "type", name, "base", d.Base)
		return
	}
	defaults := map[string]any{}
	for k, c := range d.node.m {
		if k == libdoc.ObjectKey || k == baseKey {
			continue
		}
		defaults[k] = c.Value()
	}
	ot := DeriveType(base, name, defaults)
	t.log.Debug("registering declared type", "tree", t.name, "type", name, "base", d.Base)
	if err := t.Register(ot); err != nil {
		t.log.Warn("cannot register declared type", "type", name, "error", err)
		return
	}
	d.registered = ot
}

func (d *typeDecl) Destroyed() {
	if d.registered == nil {
		return
	}
	t := d.node.tree
	if t.GetType(d.registered.Name) == d.registered {
		t.RemoveType(d.registered.Name)
	}
}
