package datasource

import (
	"sync"

	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/tree"
)

// Feed merges delivered documents into a tree. Deliveries and views are
// serialized, so a Feed may be shared between a source goroutine and
// readers.
type Feed struct {
	mu       sync.Mutex
	tree     *tree.Tree
	onChange func(doc any, changed []*tree.Node)

	// snap is never modified once published; stale marks it out of date.
	snap  *tree.Tree
	stale bool
}

func NewFeed(t *tree.Tree) *Feed {
	return &Feed{tree: t, stale: true}
}

// OnChange sets a function called, under the feed lock, after every
// delivery which changed the tree.
func (f *Feed) OnChange(fn func(doc any, changed []*tree.Node)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// Deliver merges doc into the tree. Null documents are ignored. Deliver
// is a DeliverFunc.
func (f *Feed) Deliver(doc any) {
	if doc == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.tree.Set(doc)
	if debug.Feed() {
		debug.Logf("feed %s: %d changed\n", f.tree.Name(), len(changed))
		debug.LogAny(doc)
	}
	if len(changed) == 0 {
		return
	}
	f.stale = true
	if f.onChange != nil {
		f.onChange(doc, changed)
	}
}

// View calls fn with the tree locked.
func (f *Feed) View(fn func(t *tree.Tree)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.tree)
	f.stale = true
}

// Snapshot returns a copy of the tree as of the last delivery. The copy
// holds data only, no objects are bound in it, and later deliveries
// never modify it, so it may be read without locking.
func (f *Feed) Snapshot() *tree.Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale || f.snap == nil {
		snap := tree.New(
			tree.WithName(f.tree.Name()),
			tree.WithLogger(f.tree.Logger()),
			tree.WithoutBuiltinTypes(),
		)
		snap.Set(f.tree.GetValue())
		f.snap = snap
		f.stale = false
	}
	return f.snap
}
