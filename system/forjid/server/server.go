package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/signadot/forjitree/datasource"
	"github.com/signadot/forjitree/tree"
	"github.com/signadot/forjitree/watch"
)

// Server represents the forjid document server.
type Server struct {
	Spec Spec

	// mu guards tree and orders it with watchers.
	mu       sync.Mutex
	tree     *tree.Tree
	watchers *watch.Registry

	upgrader websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener
	done     chan struct{}
}

// New creates a new Server instance.
func New(spec *Spec) (*Server, error) {
	if spec.Log == nil {
		spec.Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(),
		}))
	}
	if spec.Config == nil {
		spec.Config = DefaultConfig()
	}
	if err := spec.Config.Validate(); err != nil {
		return nil, err
	}
	if spec.Addr == "" {
		spec.Addr = spec.Config.Addr
	}

	s := &Server{
		Spec: *spec,
		tree: tree.New(tree.WithName(spec.Config.Name), tree.WithLogger(spec.Log)),
		done: make(chan struct{}),
	}
	if spec.Config.Datasources {
		if err := datasource.Register(s.tree, &datasource.Options{Log: spec.Log}); err != nil {
			return nil, err
		}
	}
	s.watchers = watch.NewRegistry(s.tree.GetValue, &watch.Options{
		ExpireAfter: spec.Config.WatcherExpiry,
		Log:         spec.Log,
	})
	if spec.Config.Initial != nil {
		s.tree.Set(spec.Config.Initial)
	}
	s.tree.Created()
	return s, nil
}

func slogLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Set merges doc into the tree and records it for every watcher. It
// returns the number of changed nodes.
func (s *Server) Set(doc any) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.tree.Set(doc)
	if len(changed) > 0 {
		s.watchers.Collect(doc)
	}
	return len(changed)
}

// Value returns the values of the nodes matching path, or the whole
// document if path is empty. A path matching several nodes gives a
// sequence.
func (s *Server) Value(path string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		return s.tree.GetValue()
	}
	nodes := s.tree.Get(path)
	if len(nodes) == 1 {
		return nodes[0].Value()
	}
	res := make([]any, len(nodes))
	for i, n := range nodes {
		res[i] = n.Value()
	}
	return res
}

// Watch returns the full document for a new watcher and its changes
// since the last call otherwise.
func (s *Server) Watch(id string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchers.Watch(id)
}

// Watchers returns the number of live watchers.
func (s *Server) Watchers() int {
	return s.watchers.Len()
}

// Start listens on Spec.Addr and serves in a separate goroutine.
func (s *Server) Start() error {
	if s.httpSrv != nil {
		return ErrRunning
	}
	ln, err := net.Listen("tcp", s.Spec.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.httpSrv = &http.Server{Handler: s.Handler()}
	s.Spec.Log.Info("forjid listening", "addr", ln.Addr().String(), "tree", s.tree.Name())
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Spec.Log.Error("serve error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the listener down, ends websocket pushes and destroys the
// objects of the tree.
func (s *Server) Stop(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
		s.httpSrv = nil
		s.listener = nil
	}
	s.mu.Lock()
	s.tree.Clear()
	s.mu.Unlock()
	return err
}

// Addr returns the listener's address, or empty string if not running.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
