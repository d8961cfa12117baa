package tree

import (
	"log/slog"

	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/libdoc"
)

// Tree owns a root node and a type registry. A Tree is not safe for
// concurrent use.
type Tree struct {
	name  string
	log   *slog.Logger
	types map[string]*ObjectType
	root  *Node

	created  bool
	modified bool

	unregistered []pendingPath
}

type options struct {
	name     string
	log      *slog.Logger
	builtins bool
}

type Option func(*options)

func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithoutBuiltinTypes leaves the built-in "Type" declaration type out of
// the registry.
func WithoutBuiltinTypes() Option {
	return func(o *options) { o.builtins = false }
}

func New(opts ...Option) *Tree {
	o := &options{builtins: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	t := &Tree{
		name:  o.name,
		log:   o.log,
		types: map[string]*ObjectType{},
	}
	t.root = newNode(t, nil, "")
	if o.builtins {
		t.types[TypeDeclName] = typeDeclType()
	}
	return t
}

// Set merges doc into the tree, synchronizes the objects of the changed
// nodes and returns the changed nodes, descendants first.
func (t *Tree) Set(doc any) []*Node {
	changed := t.root.patch(libdoc.Normalize(doc))
	if debug.Sync() {
		debug.Logf("set %s: %d changed\n", t.name, len(changed))
	}
	t.sync(changed)
	if len(changed) > 0 {
		t.modified = true
	}
	return changed
}

// Created calls CreatedTree on every bound object top down. Only the
// first call has an effect until the tree is cleared.
func (t *Tree) Created() {
	if t.created {
		return
	}
	t.root.callCreatedTree()
	t.created = true
}

// Clear destroys every object and empties the tree.
func (t *Tree) Clear() {
	old := t.root
	old.destroyObject(true)
	old.detach()
	t.root = newNode(t, nil, "")
	t.unregistered = nil
	t.created = false
	t.modified = true
}

// GetValue returns the document held by the tree.
func (t *Tree) GetValue() any {
	return t.root.Value()
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Name() string {
	return t.name
}

func (t *Tree) SetName(name string) {
	t.name = name
}

func (t *Tree) Logger() *slog.Logger {
	return t.log
}

// IsModified reports whether a merge changed the tree since the last
// ResetModified.
func (t *Tree) IsModified() bool {
	return t.modified
}

func (t *Tree) ResetModified() {
	t.modified = false
}

// Unregistered returns the paths of the maps naming types which are not
// registered yet.
func (t *Tree) Unregistered() []string {
	res := make([]string, len(t.unregistered))
	for i, pp := range t.unregistered {
		res[i] = pp.path
	}
	return res
}

// Get resolves path from the root.
func (t *Tree) Get(path string) []*Node {
	return t.root.Get(path)
}

// GetOne resolves path from the root and returns the first match.
func (t *Tree) GetOne(path string) *Node {
	return t.root.GetOne(path)
}
