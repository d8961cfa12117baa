package datasource

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/watch"
)

// DefaultReconnectEvery is the delay before a dropped websocket
// connection is dialed again.
const DefaultReconnectEvery = 2 * time.Second

// WatcherIDParam is the query parameter carrying the watcher id.
const WatcherIDParam = "watcherId"

// WebSocket delivers every message of a websocket connection. The
// connection is dialed with a watcherId query parameter so that a forjid
// server resumes the change feed of the same watcher after a reconnect.
type WebSocket struct {
	URL            string
	WatcherID      string
	ReconnectEvery time.Duration
	Select         string
	Mount          string
	Decode         DecodeFunc
	Dialer         *websocket.Dialer
	// OnError is called with every dial, read and decode error.
	OnError func(error)
	Log     *slog.Logger
}

// Run returns only when ctx is done.
func (w *WebSocket) Run(ctx context.Context, deliver DeliverFunc) error {
	if w.WatcherID == "" {
		w.WatcherID = watch.NewID()
	}
	target, err := w.dialURL()
	if err != nil {
		return err
	}
	every := w.ReconnectEvery
	if every <= 0 {
		every = DefaultReconnectEvery
	}
	log := logger(w.Log).With("url", w.URL, "watcherId", w.WatcherID)
	for {
		err := w.session(ctx, target, deliver)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug("websocket disconnected", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(every):
		}
	}
}

func (w *WebSocket) dialURL() (string, error) {
	u, err := url.Parse(w.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(WatcherIDParam, w.WatcherID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// session reads one connection until it fails.
func (w *WebSocket) session(ctx context.Context, target string, deliver DeliverFunc) error {
	dialer := w.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		w.report(err)
		return err
	}
	defer ws.Close()
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	sh := shape{Decode: w.Decode, Select: w.Select, Mount: w.Mount}
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				w.report(err)
			}
			return err
		}
		if debug.Feed() {
			debug.Logf("ws %s: %d bytes\n", w.URL, len(msg))
		}
		doc, err := sh.apply(msg)
		if err != nil {
			w.report(err)
			continue
		}
		deliver(doc)
	}
}

func (w *WebSocket) report(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}
