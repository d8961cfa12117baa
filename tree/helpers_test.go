package tree

import (
	"fmt"
	"log/slog"
	"testing"
)

type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// testObj records its lifecycle. Updated is recorded only when
// logUpdates is set.
type testObj struct {
	rec        *recorder
	node       *Node
	path       string
	logUpdates bool

	Title string
	Count int
	Tags  []string
	Opts  map[string]int
	Ref   string `forji:"ref_name"`
}

func (o *testObj) Created()         { o.rec.add("Created:%s", o.path) }
func (o *testObj) Destroyed()       { o.rec.add("Destroyed:%s", o.path) }
func (o *testObj) CreatedChildren() { o.rec.add("CreatedChildren:%s", o.path) }
func (o *testObj) CreatedTree()     { o.rec.add("CreatedTree:%s", o.path) }
func (o *testObj) Updated(key string, value any) {
	if o.logUpdates {
		o.rec.add("Updated:%s:%s=%v", o.path, key, value)
	}
}

func newTestObj(rec *recorder, logUpdates bool) NewObjectFunc {
	return func(n *Node) Object {
		return &testObj{rec: rec, node: n, path: n.Path(), logUpdates: logUpdates}
	}
}

// bag declares no fields; it relies on AllowUninitializedFields.
type bag struct {
	fields map[string]any
}

func (b *bag) HasField(key string) bool {
	_, ok := b.fields[key]
	return ok
}

func (b *bag) SetField(key string, value any) {
	b.fields[key] = value
}

func quietTree(opts ...Option) *Tree {
	return New(append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)...)
}

func mustAddType(t *testing.T, tr *Tree, newObj NewObjectFunc, name string, opts ...TypeOption) {
	t.Helper()
	if err := tr.AddType(newObj, name, opts...); err != nil {
		t.Fatalf("AddType(%s): %v", name, err)
	}
}

func paths(nodes []*Node) []string {
	res := make([]string, len(nodes))
	for i, n := range nodes {
		res[i] = n.Path()
	}
	return res
}
