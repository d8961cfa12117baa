package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// DeliverFunc receives every document a source produces, in order.
type DeliverFunc func(doc any)

// Source produces documents until its context is done or, for sources
// which complete, until the last document was delivered.
type Source interface {
	Run(ctx context.Context, deliver DeliverFunc) error
}

// Options configure the sources built by [New]. The zero value is usable.
type Options struct {
	// Select is a gjson path applied to each payload.
	Select string
	// Mount wraps each selected payload under an sjson path.
	Mount string
	// Decode defaults to DecodeJSON.
	Decode DecodeFunc

	// Interval polls http sources; zero fetches once.
	Interval time.Duration
	Client   *http.Client

	// WatcherID identifies websocket connections to a forjid server;
	// empty picks a fresh id.
	WatcherID      string
	ReconnectEvery time.Duration
	Dialer         *websocket.Dialer
	OnError        func(error)

	Log *slog.Logger
}

// New returns the source for rawURL according to its scheme: http and
// https give an [HTTP] source, ws and wss a [WebSocket] source.
func New(rawURL string, opts *Options) (Source, error) {
	if opts == nil {
		opts = &Options{}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedScheme, err)
	}
	switch u.Scheme {
	case "http", "https":
		return &HTTP{
			URL:      rawURL,
			Interval: opts.Interval,
			Client:   opts.Client,
			Select:   opts.Select,
			Mount:    opts.Mount,
			Decode:   opts.Decode,
			Log:      opts.Log,
		}, nil
	case "ws", "wss":
		return &WebSocket{
			URL:            rawURL,
			WatcherID:      opts.WatcherID,
			ReconnectEvery: opts.ReconnectEvery,
			Dialer:         opts.Dialer,
			OnError:        opts.OnError,
			Select:         opts.Select,
			Mount:          opts.Mount,
			Decode:         opts.Decode,
			Log:            opts.Log,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
