package tree

import (
	"fmt"
	"maps"

	"github.com/signadot/forjitree/libdoc"
)

// ObjectType describes how the objects of a registered type are built.
type ObjectType struct {
	Name string
	New  NewObjectFunc

	// Defaults are written to every new object before the node's own
	// fields.
	Defaults map[string]any

	// AllowUninitializedFields lets the type accept writes to fields its
	// objects do not declare.
	AllowUninitializedFields bool

	// Immutable types are rebuilt each time their node changes.
	Immutable bool
}

// DeriveType returns a new type named name which builds its objects like
// base, with defaults laid over the defaults of base.
func DeriveType(base *ObjectType, name string, defaults map[string]any) *ObjectType {
	merged := make(map[string]any, len(base.Defaults)+len(defaults))
	maps.Copy(merged, base.Defaults)
	maps.Copy(merged, defaults)
	return &ObjectType{
		Name:                     name,
		New:                      base.New,
		Defaults:                 libdoc.Clone(merged).(map[string]any),
		AllowUninitializedFields: base.AllowUninitializedFields,
		Immutable:                base.Immutable,
	}
}

type typeOptions struct {
	defaults    map[string]any
	allowUninit bool
	immutable   bool
	base        string
}

// TypeOption configures a type registered with [Tree.AddType].
type TypeOption func(*typeOptions)

// WithDefaults sets the default field values of the type.
func WithDefaults(defaults map[string]any) TypeOption {
	return func(o *typeOptions) { o.defaults = defaults }
}

// AllowUninitializedFields lets the type accept writes to undeclared
// fields.
func AllowUninitializedFields() TypeOption {
	return func(o *typeOptions) { o.allowUninit = true }
}

// Immutable makes every change of a bound node rebuild its object.
func Immutable() TypeOption {
	return func(o *typeOptions) { o.immutable = true }
}

// Extends derives the type from the registered type base: its defaults
// and field policy are inherited, and so is its constructor unless one is
// given.
func Extends(base string) TypeOption {
	return func(o *typeOptions) { o.base = base }
}

// AddType registers a type under name, replacing any type of that name,
// and binds the nodes which were waiting for it.
func (t *Tree) AddType(newObj NewObjectFunc, name string, opts ...TypeOption) error {
	o := &typeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	var ot *ObjectType
	if o.base != "" {
		base := t.types[o.base]
		if base == nil {
			return fmt.Errorf("%s extends %s: %w", name, o.base, ErrUnknownBase)
		}
		ot = DeriveType(base, name, o.defaults)
		if newObj != nil {
			ot.New = newObj
		}
	} else {
		ot = &ObjectType{Name: name, New: newObj}
		if o.defaults != nil {
			ot.Defaults = libdoc.Clone(o.defaults).(map[string]any)
		}
	}
	ot.AllowUninitializedFields = ot.AllowUninitializedFields || o.allowUninit
	ot.Immutable = ot.Immutable || o.immutable
	return t.Register(ot)
}

// Register adds ot to the type registry, replacing any type of the same
// name, and binds the nodes which were waiting for it.
func (t *Tree) Register(ot *ObjectType) error {
	if ot.Name == "" {
		return ErrEmptyTypeName
	}
	if ot.New == nil {
		return fmt.Errorf("%s: %w", ot.Name, ErrNilConstructor)
	}
	t.types[ot.Name] = ot
	t.resyncUnregistered()
	return nil
}

// RemoveType removes a type from the registry. Bound objects are kept
// until their nodes change.
func (t *Tree) RemoveType(name string) {
	delete(t.types, name)
}

// GetType returns the registered type name, or nil.
func (t *Tree) GetType(name string) *ObjectType {
	return t.types[name]
}

// Types returns the registered type names in order.
func (t *Tree) Types() []string {
	return sortedKeys(t.types)
}
