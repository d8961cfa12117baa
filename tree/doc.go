// Package tree implements a reactive document tree.
//
// A [Tree] holds a document (maps, sequences and scalars, see package
// libdoc) as a graph of [Node] values. Documents are merged into the tree
// with [Tree.Set]: the merge is incremental, and only the nodes which
// changed take part in synchronization.
//
// # Merging
//
// Maps are merged key by key and never lose keys. Sequences are diffed by
// index and truncated when the incoming sequence is shorter, unless the
// first incoming element carries a truthy "appendArray" key, in which case
// every incoming element is appended. Scalars replace the previous value.
//
//	t := tree.New()
//	t.Set(map[string]any{"m": map[string]any{"a": 1, "b": 2}})
//	t.Set(map[string]any{"m": map[string]any{"a": 1}})
//	t.GetValue() // map[m:map[a:1 b:2]]
//
// # Objects
//
// A map carrying the reserved key "object" names a registered type. After
// every merge the tree binds an application object, built by the type's
// constructor, to each such map. Objects may implement any of [Creator],
// [Destroyer], [ChildrenCreator], [TreeCreator], [Updater], [Redirector]
// and [FieldSetter]. Map keys are written to the object's fields, but only
// to fields the object declares unless the type allows uninitialized
// fields.
//
// Types which are not registered when a map names them are resolved as
// soon as they are registered with [Tree.AddType]. Types can also be
// declared by the document itself with the built-in "Type" type:
//
//	types:
//	  Warning: {object: Type, base: Label, color: red}
//	banner: {object: Warning, text: careful}
//
// # Queries
//
// [Node.Get] resolves a path expression (see package qpath) against the
// tree. Scalar strings starting with '@' are followed as references
// relative to their parent.
package tree
