package datasource

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/signadot/forjitree/libdoc"
	"github.com/signadot/forjitree/tree"
)

// TypeName is the object type name Register adds.
const TypeName = "Datasource"

// Object runs the source for URL into a tree of its own while it is
// bound. The type is immutable: changing any field restarts the source.
type Object struct {
	URL    string `forji:"url"`
	Select string `forji:"select"`
	Mount  string `forji:"mount"`
	// Interval is a duration string such as "5s" or a number of seconds.
	Interval any `forji:"interval"`
	// Format is "json" (the default) or "yaml".
	Format string `forji:"format"`

	base *Options
	log  *slog.Logger
	feed *Feed

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
	err    error
}

// Register adds the Datasource type to t. base supplies the options
// objects do not set themselves, it may be nil.
func Register(t *tree.Tree, base *Options) error {
	if base == nil {
		base = &Options{}
	}
	log := base.Log
	if log == nil {
		log = t.Logger()
	}
	return t.AddType(func(n *tree.Node) tree.Object {
		return &Object{
			base: base,
			log:  log.With("datasource", n.Path()),
			feed: NewFeed(tree.New(tree.WithLogger(log))),
			done: make(chan struct{}),
		}
	}, TypeName, tree.Immutable())
}

func (o *Object) Created() {
	o.feed.View(func(t *tree.Tree) { t.SetName(o.URL) })
	opts := *o.base
	opts.Select = o.Select
	opts.Mount = o.Mount
	opts.Interval = duration(o.Interval)
	opts.Log = o.log
	if strings.EqualFold(o.Format, "yaml") {
		opts.Decode = DecodeYAML
	}
	src, err := New(o.URL, &opts)
	if err != nil {
		o.log.Warn("datasource not started", "error", err)
		o.setErr(err)
		close(o.done)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	go func() {
		defer close(o.done)
		err := src.Run(ctx, o.feed.Deliver)
		if err != nil && !errors.Is(err, context.Canceled) {
			o.log.Warn("datasource stopped", "error", err)
			o.setErr(err)
		}
	}()
}

// Destroyed stops the source, waits for it and clears the tree.
func (o *Object) Destroyed() {
	if o.cancel != nil {
		o.cancel()
		<-o.done
	}
	o.feed.View(func(t *tree.Tree) { t.Clear() })
}

// Redirect sends queries through the node to the root of a snapshot of
// the datasource tree, so readers never see a delivery half applied.
func (o *Object) Redirect() []*tree.Node {
	return []*tree.Node{o.feed.Snapshot().Root()}
}

// View calls fn with the datasource tree locked.
func (o *Object) View(fn func(t *tree.Tree)) {
	o.feed.View(fn)
}

// Feed returns the feed the source delivers to.
func (o *Object) Feed() *Feed {
	return o.feed
}

// Done is closed when the source stops: after a single fetch, on a
// failure, or once the object is destroyed.
func (o *Object) Done() <-chan struct{} {
	return o.done
}

// Err returns the error the source stopped with, if any.
func (o *Object) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *Object) setErr(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
}

func duration(v any) time.Duration {
	if s, ok := v.(string); ok {
		d, _ := time.ParseDuration(s)
		return d
	}
	if f, ok := libdoc.Float(v); ok {
		return time.Duration(f * float64(time.Second))
	}
	return 0
}
