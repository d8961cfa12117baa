package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/gorilla/websocket"

	"github.com/signadot/forjitree/datasource"
	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/watch"
)

const (
	writeTimeout = 10 * time.Second
	maxBody      = 16 << 20
)

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleGet)
	mux.HandleFunc("POST /{$}", s.handlePost)
	mux.HandleFunc("GET /watch", s.handleWatch)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, s.Value(r.URL.Query().Get("path")))
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	decode := datasource.DecodeJSON
	if isYAML(r.Header.Get("Content-Type")) {
		decode = datasource.DecodeYAML
	}
	doc, err := decode(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n := s.Set(doc)
	s.Spec.Log.Debug("merged document", "changed", n)
	s.write(w, r, map[string]any{"changed": n})
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(datasource.WatcherIDParam)
	if id == "" {
		http.Error(w, "missing "+datasource.WatcherIDParam, http.StatusBadRequest)
		return
	}
	s.write(w, r, s.Watch(id))
}

// handleWS pushes the full document, then the changes of the watcher
// every PushInterval while there are any.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(datasource.WatcherIDParam)
	if id == "" {
		id = watch.NewID()
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Spec.Log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()
	log := s.Spec.Log.With("watcherId", id)
	log.Debug("websocket watcher connected")

	// reading handles control frames and notices the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.Spec.Config.PushInterval)
	defer ticker.Stop()
	for {
		if v := s.Watch(id); v != nil {
			if debug.Watch() {
				debug.Logf("push %s: %v\n", id, v)
			}
			ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteJSON(v); err != nil {
				log.Debug("websocket write failed", "error", err)
				return
			}
		}
		select {
		case <-closed:
			log.Debug("websocket watcher disconnected")
			return
		case <-s.done:
			ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return
		case <-ticker.C:
		}
	}
}

// write encodes v as YAML if the client accepts only YAML and JSON
// otherwise.
func (s *Server) write(w http.ResponseWriter, r *http.Request, v any) {
	if accept := r.Header.Get("Accept"); isYAML(accept) && !strings.Contains(accept, "json") {
		data, err := yaml.Marshal(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func isYAML(contentType string) bool {
	return strings.Contains(contentType, "yaml")
}
