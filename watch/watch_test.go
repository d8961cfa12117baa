package watch

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/forjitree/tree"
)

type m = map[string]any
type l = []any

func TestWatchFirstCallIsFull(t *testing.T) {
	tr := tree.New(tree.WithLogger(slog.New(slog.DiscardHandler)))
	tr.Set(m{"a": 1})
	r := NewRegistry(tr.GetValue, nil)

	if diff := cmp.Diff(m{"a": 1}, r.Watch("w")); diff != "" {
		t.Errorf("first Watch mismatch (-want +got):\n%s", diff)
	}
	if got := r.Watch("w"); got != nil {
		t.Errorf("Watch without changes = %v, want nil", got)
	}
}

func TestCollectMerges(t *testing.T) {
	r := NewRegistry(func() any { return m{} }, nil)
	r.Watch("w")

	r.Collect(m{"a": m{"b": 1}, "l": l{1}})
	r.Collect(m{"a": m{"c": 2}, "l": l{m{"appendArray": true, "v": 2}, 3}})
	r.Collect(m{"x": "y"})

	want := m{
		"a": m{"b": 1, "c": 2},
		"l": l{1, m{"v": 2}, 3},
		"x": "y",
	}
	if diff := cmp.Diff(want, r.Watch("w")); diff != "" {
		t.Errorf("Watch mismatch (-want +got):\n%s", diff)
	}
	if got := r.Watch("w"); got != nil {
		t.Errorf("changes not reset: %v", got)
	}
}

func TestCollectReplaysOnTree(t *testing.T) {
	src := tree.New(tree.WithLogger(slog.New(slog.DiscardHandler)))
	src.Set(m{"a": m{"b": 1}, "l": l{1, 2, 3}})
	r := NewRegistry(src.GetValue, nil)

	replica := tree.New(tree.WithLogger(slog.New(slog.DiscardHandler)))
	replica.Set(r.Watch("w"))

	for _, doc := range []any{
		m{"a": m{"c": 2}},
		m{"l": l{m{"appendArray": true, "v": 4}}},
		m{"l": l{9}},
		m{"l": l{m{"appendArray": true, "v": 10}, 11}},
		m{"a": "flat"},
	} {
		src.Set(doc)
		r.Collect(doc)
	}
	replica.Set(r.Watch("w"))
	if diff := cmp.Diff(src.GetValue(), replica.GetValue()); diff != "" {
		t.Errorf("replica mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchersAreIndependent(t *testing.T) {
	r := NewRegistry(func() any { return "full" }, nil)
	r.Watch("a")
	r.Collect(m{"k": 1})
	if got := r.Watch("b"); got != "full" {
		t.Errorf("new watcher got %v", got)
	}
	r.Collect(m{"k": 2})
	if diff := cmp.Diff(m{"k": 2}, r.Watch("a")); diff != "" {
		t.Errorf("watcher a mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m{"k": 2}, r.Watch("b")); diff != "" {
		t.Errorf("watcher b mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectDoesNotAlias(t *testing.T) {
	r := NewRegistry(func() any { return nil }, nil)
	r.Watch("w")
	doc := m{"a": m{"b": 1}}
	r.Collect(doc)
	r.Collect(m{"a": m{"c": 2}})
	if diff := cmp.Diff(m{"a": m{"b": 1}}, doc); diff != "" {
		t.Errorf("Collect modified its input (-want +got):\n%s", diff)
	}
}

func TestExpiry(t *testing.T) {
	r := NewRegistry(func() any { return "full" }, &Options{
		ExpireAfter: 300 * time.Millisecond,
		Log:         slog.New(slog.DiscardHandler),
	})
	r.Watch("idle")
	r.Watch("busy")

	time.Sleep(180 * time.Millisecond)
	r.Watch("busy")
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	time.Sleep(180 * time.Millisecond)
	if diff := cmp.Diff([]string{"busy"}, r.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	if got := r.Watch("idle"); got != "full" {
		t.Errorf("expired watcher got %v, want full value", got)
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry(func() any { return 1 }, nil)
	r.Watch("w")
	r.Remove("w")
	r.Remove("unknown")
	if r.Len() != 0 {
		t.Errorf("Len = %d after Remove", r.Len())
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 26 || a == b {
		t.Errorf("NewID = %q, %q", a, b)
	}
}
