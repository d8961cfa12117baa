package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type m = map[string]any
type l = []any

var docs = []struct {
	name string
	doc  any
}{
	{"scalar", 5},
	{"empty map", m{}},
	{"empty sequence", m{"s": l{}}},
	{"flat", m{"a": 1, "b": "two", "c": true, "d": nil, "e": 1.5}},
	{"nested", m{"a": m{"b": m{"c": l{1, 2, m{"d": "x"}}}}}},
	{"typed", m{"x": m{"object": "A", "title": "t", "count": 2}}},
	{"sequence of maps", l{m{"k": 1}, m{"k": 2}, l{3}}},
}

func TestSetIdempotent(t *testing.T) {
	for _, tt := range docs {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			tr := quietTree()
			mustAddType(t, tr, newTestObj(rec, false), "A")
			if changed := tr.Set(tt.doc); len(changed) == 0 {
				t.Fatalf("first Set reported no change")
			}
			if changed := tr.Set(tt.doc); len(changed) != 0 {
				t.Errorf("second Set changed %v", paths(changed))
			}
		})
	}
}

func TestSetRoundTrip(t *testing.T) {
	for _, tt := range docs {
		t.Run(tt.name, func(t *testing.T) {
			tr := quietTree()
			tr.Set(tt.doc)
			if diff := cmp.Diff(tt.doc, tr.GetValue()); diff != "" {
				t.Errorf("GetValue mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetChangedPostOrder(t *testing.T) {
	tr := quietTree()
	changed := tr.Set(m{"a": m{"b": 1}, "c": 2})
	want := []string{"a/b", "a", "c", ""}
	if diff := cmp.Diff(want, paths(changed)); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
	changed = tr.Set(m{"a": m{"b": 2}})
	want = []string{"a/b", "a", ""}
	if diff := cmp.Diff(want, paths(changed)); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
}

func TestSequenceTruncation(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "A")
	tr.Set(m{"n": l{1, 2, 3}, "o": l{1, m{"object": "A"}}})
	three := tr.GetOne("n/2")
	if three == nil {
		t.Fatal("n/2 missing")
	}
	tr.Set(m{"n": l{1, 2}, "o": l{1}})
	if !three.detached {
		t.Error("truncated node still attached")
	}
	want := m{"n": l{1, 2}, "o": l{1}}
	if diff := cmp.Diff(want, tr.GetValue()); diff != "" {
		t.Errorf("GetValue mismatch (-want +got):\n%s", diff)
	}
	wantEvents := []string{"Created:o/1", "CreatedChildren:o/1", "Destroyed:o/1"}
	if diff := cmp.Diff(wantEvents, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendMode(t *testing.T) {
	tr := quietTree()
	tr.Set(m{"n": l{m{"appendArray": true, "v": 1}}})
	changed := tr.Set(m{"n": l{m{"appendArray": true, "v": 2}}})
	if len(changed) == 0 {
		t.Fatal("append reported no change")
	}
	want := m{"n": l{m{"v": 1}, m{"v": 2}}}
	if diff := cmp.Diff(want, tr.GetValue()); diff != "" {
		t.Errorf("GetValue mismatch (-want +got):\n%s", diff)
	}
	if got := tr.GetOne("n/1").Name(); got != "1" {
		t.Errorf("appended node key = %q, want 1", got)
	}
}

func TestMapAdditiveOnly(t *testing.T) {
	tr := quietTree()
	tr.Set(m{"m": m{"a": 1, "b": 2}})
	if changed := tr.Set(m{"m": m{"a": 1}}); len(changed) != 0 {
		t.Errorf("dropping a key changed %v", paths(changed))
	}
	want := m{"m": m{"a": 1, "b": 2}}
	if diff := cmp.Diff(want, tr.GetValue()); diff != "" {
		t.Errorf("GetValue mismatch (-want +got):\n%s", diff)
	}
}

func TestScalarChange(t *testing.T) {
	tests := []struct {
		name     string
		from, to any
		changed  bool
	}{
		{"same int", 1, 1, false},
		{"int and float", 1, 1.0, false},
		{"number to string", 1, "1", true},
		{"bool to string", true, "true", true},
		{"null to string", nil, "", true},
		{"value", "a", "b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := quietTree()
			tr.Set(m{"v": tt.from})
			changed := tr.Set(m{"v": tt.to})
			if got := len(changed) > 0; got != tt.changed {
				t.Errorf("changed = %v, want %v", got, tt.changed)
			}
		})
	}
}

func TestKindTransition(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "A")
	tr.Set(m{"x": m{"object": "A", "y": m{"object": "A"}}})
	x := tr.GetOne("x")
	tr.Set(m{"x": l{1}})
	if x.Kind() != SliceKind || x.Object() != nil {
		t.Errorf("x kind %s object %v", x.Kind(), x.Object())
	}
	want := []string{
		"Created:x", "Created:x/y", "CreatedChildren:x/y", "CreatedChildren:x",
		"Destroyed:x/y", "Destroyed:x",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeRebind(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, func(n *Node) Object { return &testObj{rec: rec, path: "A"} }, "A")
	mustAddType(t, tr, func(n *Node) Object { return &testObj{rec: rec, path: "B"} }, "B")
	tr.Set(m{"x": m{"object": "A"}})
	tr.Set(m{"x": m{"object": "B"}})
	want := []string{
		"Created:A", "CreatedChildren:A",
		"Destroyed:A", "Created:B", "CreatedChildren:B",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if got := tr.GetOne("x").ObjectType().Name; got != "B" {
		t.Errorf("bound type %q, want B", got)
	}
}

func TestImmutableRebinds(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "I", Immutable())
	mustAddType(t, tr, newTestObj(rec, true), "M")
	tr.Set(m{"i": m{"object": "I", "title": "a"}, "m": m{"object": "M", "title": "a"}})
	rec.events = nil
	tr.Set(m{"i": m{"title": "b"}, "m": m{"title": "b"}})
	want := []string{
		"Updated:m:title=b",
		"Destroyed:i", "Created:i",
		"CreatedChildren:i",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if got := tr.GetOne("i").Object().(*testObj).Title; got != "b" {
		t.Errorf("immutable title = %q", got)
	}
}

func TestDeferredResolution(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	tr.Set(m{"x": m{"object": "Unknown", "title": "hi"}})
	x := tr.GetOne("x")
	if x.Object() != nil {
		t.Fatal("x bound before its type exists")
	}
	if diff := cmp.Diff([]string{"x"}, tr.Unregistered()); diff != "" {
		t.Errorf("unregistered mismatch (-want +got):\n%s", diff)
	}
	tr.Set(m{"x": m{"count": 1}})
	if diff := cmp.Diff([]string{"x"}, tr.Unregistered()); diff != "" {
		t.Errorf("unregistered not deduplicated (-want +got):\n%s", diff)
	}
	mustAddType(t, tr, newTestObj(rec, false), "Unknown")
	obj, ok := x.Object().(*testObj)
	if !ok {
		t.Fatalf("x object %T", x.Object())
	}
	if obj.Title != "hi" || obj.Count != 1 {
		t.Errorf("fields not written: %+v", obj)
	}
	if len(tr.Unregistered()) != 0 {
		t.Errorf("still unregistered: %v", tr.Unregistered())
	}
	want := []string{"Created:x", "CreatedChildren:x"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "A")
	tr.Created()
	tr.Set(m{"p": m{"object": "A", "c": m{"object": "A"}}})
	want := []string{
		"Created:p", "Created:p/c",
		"CreatedChildren:p/c", "CreatedChildren:p",
		"CreatedTree:p", "CreatedTree:p/c",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatedOnce(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "A")
	tr.Set(m{"b": m{"object": "A"}, "a": m{"object": "A", "c": m{"object": "A"}}})
	rec.events = nil
	tr.Created()
	tr.Created()
	want := []string{"CreatedTree:a", "CreatedTree:a/c", "CreatedTree:b"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	rec.events = nil
	tr.Clear()
	want = []string{"Destroyed:a/c", "Destroyed:a", "Destroyed:b"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("Clear events mismatch (-want +got):\n%s", diff)
	}
	if tr.GetValue() != nil {
		t.Errorf("value after Clear: %v", tr.GetValue())
	}

	rec.events = nil
	tr.Set(m{"a": m{"object": "A"}})
	want = []string{"Created:a", "CreatedChildren:a"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events after Clear mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldSetContract(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, true), "A", WithDefaults(m{"title": "default", "count": 7}))
	mustAddType(t, tr, func(*Node) Object { return &bag{fields: map[string]any{}} }, "Bag", AllowUninitializedFields())
	tr.Set(m{
		"x": m{
			"object":   "A",
			"title":    "hi",
			"extra":    1,
			"tags":     l{"a", "b"},
			"opts":     m{"k": 2},
			"ref_name": "r",
		},
		"y":   m{"object": "A"},
		"bag": m{"object": "Bag", "anything": "goes"},
	})
	x := tr.GetOne("x").Object().(*testObj)
	want := testObj{
		Title: "hi",
		Count: 7,
		Tags:  []string{"a", "b"},
		Opts:  map[string]int{"k": 2},
		Ref:   "r",
	}
	if diff := cmp.Diff(want, *x, cmpopts.IgnoreUnexported(testObj{})); diff != "" {
		t.Errorf("x fields mismatch (-want +got):\n%s", diff)
	}
	if y := tr.GetOne("y").Object().(*testObj); y.Title != "default" || y.Count != 7 {
		t.Errorf("y defaults not applied: %+v", y)
	}

	// fields are written before Created, then again as the children of x
	// are synchronized
	wantX := []string{
		"Updated:x:count=7", "Updated:x:title=default",
		"Updated:x:opts=map[k:2]", "Updated:x:ref_name=r",
		"Updated:x:tags=[a b]", "Updated:x:title=hi",
		"Created:x",
		"Updated:x:title=hi", "Updated:x:tags=[a b]",
		"Updated:x:ref_name=r", "Updated:x:opts=map[k:2]",
	}
	var gotX []string
	for _, e := range rec.events {
		if strings.HasPrefix(e, "Updated:x:") || e == "Created:x" {
			gotX = append(gotX, e)
		}
	}
	if diff := cmp.Diff(wantX, gotX); diff != "" {
		t.Errorf("x events mismatch (-want +got):\n%s", diff)
	}

	rec.events = nil
	tr.Set(m{"x": m{"count": 4.9}})
	if x.Count != 4 {
		t.Errorf("count = %d, want 4", x.Count)
	}
	if diff := cmp.Diff([]string{"Updated:x:count=4.9"}, rec.events); diff != "" {
		t.Errorf("update events mismatch (-want +got):\n%s", diff)
	}

	b := tr.GetOne("bag").Object().(*bag)
	if diff := cmp.Diff(map[string]any{"anything": "goes"}, b.fields); diff != "" {
		t.Errorf("bag fields mismatch (-want +got):\n%s", diff)
	}
}

type point struct{ X, Y int }

type settings struct {
	Limit  uint8
	Ratio  float32
	Any    any
	At     *point
	hidden string
}

func TestFieldConversion(t *testing.T) {
	tr := quietTree()
	mustAddType(t, tr, func(*Node) Object { return &settings{} }, "S")
	tr.Set(m{"s": m{
		"object": "S",
		"limit":  3,
		"ratio":  0.5,
		"any":    "5s",
		"at":     m{"x": 1, "y": 2},
		"hidden": "x",
	}})
	s := tr.GetOne("s").Object().(*settings)
	want := settings{Limit: 3, Ratio: 0.5, Any: "5s", At: &point{X: 1, Y: 2}}
	if diff := cmp.Diff(want, *s, cmp.AllowUnexported(settings{})); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	at := s.At
	tr.Set(m{"s": m{"any": 5, "at": m{"y": 3}, "limit": nil}})
	want = settings{Ratio: 0.5, Any: 5, At: &point{X: 1, Y: 3}}
	if diff := cmp.Diff(want, *s, cmp.AllowUnexported(settings{})); diff != "" {
		t.Errorf("updated fields mismatch (-want +got):\n%s", diff)
	}
	if at.Y != 2 {
		t.Error("update wrote through the previous pointer")
	}
}

func TestAddTypeErrors(t *testing.T) {
	tr := quietTree()
	if err := tr.AddType(nil, "A"); !errors.Is(err, ErrNilConstructor) {
		t.Errorf("nil constructor: %v", err)
	}
	if err := tr.AddType(func(*Node) Object { return nil }, ""); !errors.Is(err, ErrEmptyTypeName) {
		t.Errorf("empty name: %v", err)
	}
	if err := tr.AddType(nil, "B", Extends("missing")); !errors.Is(err, ErrUnknownBase) {
		t.Errorf("unknown base: %v", err)
	}
}

func TestExtends(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "A", WithDefaults(m{"title": "a", "count": 1}), AllowUninitializedFields())
	mustAddType(t, tr, nil, "B", Extends("A"), WithDefaults(m{"title": "b"}))
	b := tr.GetType("B")
	if diff := cmp.Diff(m{"title": "b", "count": 1}, b.Defaults); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if !b.AllowUninitializedFields {
		t.Error("field policy not inherited")
	}
	tr.Set(m{"x": m{"object": "B"}})
	if got := tr.GetOne("x").Object().(*testObj).Title; got != "b" {
		t.Errorf("title = %q, want b", got)
	}
	if diff := cmp.Diff([]string{"A", "B", TypeDeclName}, tr.Types()); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveTypeIsPure(t *testing.T) {
	base := &ObjectType{
		Name:     "Base",
		New:      func(*Node) Object { return nil },
		Defaults: m{"a": 1, "nested": m{"k": 1}},
	}
	d := DeriveType(base, "Derived", m{"b": 2})
	d.Defaults["nested"].(m)["k"] = 5
	if diff := cmp.Diff(m{"a": 1, "nested": m{"k": 1}}, base.Defaults); diff != "" {
		t.Errorf("base modified (-want +got):\n%s", diff)
	}
	if d.Name != "Derived" || d.Defaults["b"] != 2 {
		t.Errorf("derived = %+v", d)
	}
}

func TestTypeDeclaration(t *testing.T) {
	for _, user := range []string{"banner", "zbanner"} {
		t.Run(user, func(t *testing.T) {
			rec := &recorder{}
			tr := quietTree()
			mustAddType(t, tr, newTestObj(rec, false), "Label")
			tr.Set(m{
				"types": m{"Warning": m{"object": "Type", "base": "Label", "title": "careful"}},
				user:    m{"object": "Warning", "count": 3},
			})
			n := tr.GetOne(user)
			obj, ok := n.Object().(*testObj)
			if !ok {
				t.Fatalf("%s object %T, unregistered %v", user, n.Object(), tr.Unregistered())
			}
			if obj.Title != "careful" || obj.Count != 3 {
				t.Errorf("fields %+v", obj)
			}
			if n.ObjectType().Name != "Warning" {
				t.Errorf("type %q", n.ObjectType().Name)
			}
			if len(tr.Unregistered()) != 0 {
				t.Errorf("unregistered %v", tr.Unregistered())
			}

			tr.Set(m{"types": m{"Warning": m{"title": "new"}}})
			if got := tr.GetType("Warning").Defaults["title"]; got != "new" {
				t.Errorf("redeclared default = %v", got)
			}

			tr.Set(m{"types": m{"Warning": 0}})
			if tr.GetType("Warning") != nil {
				t.Error("type still registered after its declaration was destroyed")
			}
		})
	}
}

func TestTypeDeclarationMissingBase(t *testing.T) {
	tr := quietTree()
	tr.Set(m{"types": m{"W": m{"object": "Type", "base": "Nope"}}})
	if tr.GetType("W") != nil {
		t.Error("type registered without base")
	}
}

func TestModified(t *testing.T) {
	tr := quietTree()
	if tr.IsModified() {
		t.Fatal("new tree modified")
	}
	tr.Set(m{"a": 1})
	if !tr.IsModified() {
		t.Fatal("Set did not mark the tree")
	}
	tr.ResetModified()
	tr.Set(m{"a": 1})
	if tr.IsModified() {
		t.Error("no-op Set marked the tree")
	}
}

func TestNodeSet(t *testing.T) {
	tr := quietTree()
	tr.Set(m{"a": m{"b": 1}})
	tr.GetOne("a").Set(m{"c": 2})
	tr.GetOne("a/b").Set(3)
	want := m{"a": m{"b": 3, "c": 2}}
	if diff := cmp.Diff(want, tr.GetValue()); diff != "" {
		t.Errorf("GetValue mismatch (-want +got):\n%s", diff)
	}
	tr.Root().Set(m{"d": 4})
	if got := tr.GetOne("d").Value(); got != 4 {
		t.Errorf("d = %v", got)
	}
}

func TestNodeAccessors(t *testing.T) {
	tr := quietTree(WithName("main"))
	tr.Set(m{"a": m{"b": l{1, 2}}})
	b1 := tr.GetOne("a/b/1")
	if b1.Path() != "a/b/1" || b1.Name() != "1" || b1.Parent().Name() != "b" {
		t.Errorf("path %q name %q parent %q", b1.Path(), b1.Name(), b1.Parent().Name())
	}
	if b1.Root() != tr.Root() || b1.Tree() != tr {
		t.Error("wrong root or tree")
	}
	if tr.Root().Name() != "main" || tr.Root().Path() != "" {
		t.Errorf("root name %q path %q", tr.Root().Name(), tr.Root().Path())
	}
	if got := paths(tr.GetOne("a/b").Children()); !cmp.Equal(got, []string{"a/b/0", "a/b/1"}) {
		t.Errorf("children %v", got)
	}
	if tr.GetOne("a").Child("b").Child("0").Value() != 1 {
		t.Error("Child lookup failed")
	}
	if tr.GetOne("a").Child("zz") != nil || b1.Child("0") != nil {
		t.Error("Child found a missing node")
	}
}

func TestCleanNulls(t *testing.T) {
	tr := quietTree()
	tr.Set(m{"a": nil, "b": m{"c": nil, "d": 1}})
	tr.Root().CleanNulls(false)
	if diff := cmp.Diff(m{"b": m{"c": nil, "d": 1}}, tr.GetValue()); diff != "" {
		t.Errorf("shallow mismatch (-want +got):\n%s", diff)
	}
	tr.Root().CleanNulls(true)
	if diff := cmp.Diff(m{"b": m{"d": 1}}, tr.GetValue()); diff != "" {
		t.Errorf("recursive mismatch (-want +got):\n%s", diff)
	}
}

func TestGetObj(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "A")
	mustAddType(t, tr, func(*Node) Object { return &bag{} }, "Bag")
	tr.Set(m{"a": m{"object": "A"}, "b": m{"object": "Bag"}, "c": m{"object": "A"}, "d": 1})
	nodes := tr.Get("*")
	if got := GetObj[*bag](nodes); got == nil {
		t.Error("GetObj found no bag")
	}
	objs := GetObjs[*testObj](nodes)
	if len(objs) != 2 || objs[0].path != "a" || objs[1].path != "c" {
		t.Errorf("GetObjs = %v", objs)
	}
	if got := GetObj[*recorder](nodes); got != nil {
		t.Errorf("GetObj of unbound type = %v", got)
	}
}

type spawner struct{ node *Node }

func (s *spawner) Created() {
	s.node.Tree().Set(m{"spawned": m{"object": "A"}})
}

type killer struct{ node *Node }

func (k *killer) Created() {
	k.node.Tree().Set(m{"a": 5})
}

func TestReentrantSet(t *testing.T) {
	rec := &recorder{}
	tr := quietTree()
	mustAddType(t, tr, newTestObj(rec, false), "A")
	mustAddType(t, tr, func(n *Node) Object { return &spawner{node: n} }, "Spawner")
	mustAddType(t, tr, func(n *Node) Object { return &killer{node: n} }, "Killer")

	tr.Set(m{"s": m{"object": "Spawner"}})
	if _, ok := tr.GetOne("spawned").Object().(*testObj); !ok {
		t.Error("nested Set did not bind")
	}

	rec.events = nil
	tr.Set(m{"a": m{"c": m{"object": "A"}}, "k": m{"object": "Killer"}})
	if len(rec.events) != 0 {
		t.Errorf("object bound on a discarded node: %v", rec.events)
	}
	if got := tr.GetOne("a").Value(); got != 5 {
		t.Errorf("a = %v, want 5", got)
	}
}
