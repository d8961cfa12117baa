package tree

// Object is an application object bound to a map node. The capabilities
// below are all optional.
type Object = any

// NewObjectFunc constructs the object bound to n. The node is fully merged
// but the object's fields are written after construction.
type NewObjectFunc func(n *Node) Object

// Creator is called once the fields of a freshly bound object are written.
type Creator interface {
	Created()
}

// Destroyer is called when an object is unbound from its node.
type Destroyer interface {
	Destroyed()
}

// ChildrenCreator is called after every object bound in the same merge
// below the object's node was created.
type ChildrenCreator interface {
	CreatedChildren()
}

// TreeCreator is called top down once the tree is created, see
// [Tree.Created], and for objects bound afterwards.
type TreeCreator interface {
	CreatedTree()
}

// Updater is notified of every accepted field write.
type Updater interface {
	Updated(key string, value any)
}

// Redirector replaces its node in query results.
type Redirector interface {
	Redirect() []*Node
}

// FieldSetter gives an object an explicit field table instead of its
// exported struct fields.
type FieldSetter interface {
	HasField(key string) bool
	SetField(key string, value any)
}

// GetObj returns the first object of type T bound to one of nodes.
func GetObj[T any](nodes []*Node) T {
	for _, n := range nodes {
		if n == nil || n.objType == nil {
			continue
		}
		if obj, ok := n.obj.(T); ok {
			return obj
		}
	}
	var zero T
	return zero
}

// GetObjs returns the objects of type T bound to nodes, in order.
func GetObjs[T any](nodes []*Node) []T {
	res := []T{}
	for _, n := range nodes {
		if n == nil || n.objType == nil {
			continue
		}
		if obj, ok := n.obj.(T); ok {
			res = append(res, obj)
		}
	}
	return res
}
