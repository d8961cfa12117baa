// Package watch collects per watcher change feeds for a document.
//
// A watcher is identified by an id chosen by the client. The first call to
// [Registry.Watch] with a new id returns the full value of the source and
// registers the watcher; later calls return the changes merged since the
// previous call, or nil if nothing changed. Watchers that are not polled
// for [Options.ExpireAfter] are dropped.
package watch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/oklog/ulid/v2"

	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/libdoc"
)

// DefaultExpireAfter is the idle time after which a watcher is dropped.
const DefaultExpireAfter = 60 * time.Second

type Options struct {
	// ExpireAfter defaults to DefaultExpireAfter.
	ExpireAfter time.Duration
	Log         *slog.Logger
}

// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	source   func() any
	watchers *ttlcache.Cache[string, *watcher]
	log      *slog.Logger
}

type watcher struct {
	changes any
}

// NewRegistry creates a registry whose new watchers start from source().
// source is called with the registry locked and must not call back into
// it.
func NewRegistry(source func() any, opts *Options) *Registry {
	if opts == nil {
		opts = &Options{}
	}
	expireAfter := opts.ExpireAfter
	if expireAfter <= 0 {
		expireAfter = DefaultExpireAfter
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	// reads extend the ttl, so a watcher expires once it is not polled
	// for expireAfter.
	watchers := ttlcache.New[string, *watcher](
		ttlcache.WithTTL[string, *watcher](expireAfter),
	)
	watchers.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *watcher]) {
		if reason == ttlcache.EvictionReasonExpired {
			log.Debug("watcher expired", "watcherId", item.Key())
		}
	})
	return &Registry{
		source:   source,
		watchers: watchers,
		log:      log,
	}
}

// NewID returns a fresh watcher id.
func NewID() string {
	return ulid.Make().String()
}

// Collect records changes, a document as given to tree.Tree.Set, for
// every registered watcher.
func (r *Registry) Collect(changes any) {
	changes = libdoc.Normalize(changes)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers.DeleteExpired()
	for id, item := range r.watchers.Items() {
		w := item.Value()
		w.changes = libdoc.MergeChanges(w.changes, changes)
		if debug.Watch() {
			debug.Logf("watch %s collected %v\n", id, w.changes)
		}
	}
}

// Watch returns the full source value for an unknown id and the changes
// collected since the previous call otherwise.
func (r *Registry) Watch(id string) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers.DeleteExpired()
	item := r.watchers.Get(id)
	if item == nil {
		r.watchers.Set(id, &watcher{}, ttlcache.DefaultTTL)
		r.log.Debug("new watcher", "watcherId", id)
		return r.source()
	}
	w := item.Value()
	res := w.changes
	w.changes = nil
	return res
}

// Remove drops the watcher id, if present.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers.Delete(id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers.DeleteExpired()
	return r.watchers.Len()
}

// IDs returns the registered watcher ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers.DeleteExpired()
	ids := r.watchers.Keys()
	sort.Strings(ids)
	return ids
}
