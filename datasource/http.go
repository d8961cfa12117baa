package datasource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/signadot/forjitree/debug"
)

// HTTP fetches a document with GET, once or every Interval.
type HTTP struct {
	URL      string
	Interval time.Duration
	Select   string
	Mount    string
	Decode   DecodeFunc
	Client   *http.Client
	Log      *slog.Logger
}

// Run fetches once and returns the fetch error when Interval is zero.
// When polling, failed fetches are logged and retried at the next tick.
func (h *HTTP) Run(ctx context.Context, deliver DeliverFunc) error {
	log := logger(h.Log).With("url", h.URL)
	for {
		doc, err := h.Fetch(ctx)
		switch {
		case err == nil:
			deliver(doc)
		case ctx.Err() != nil:
			return ctx.Err()
		case h.Interval <= 0:
			return err
		default:
			log.Warn("fetch failed", "error", err)
		}
		if h.Interval <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(h.Interval):
		}
	}
}

// Fetch gets and decodes the document once.
func (h *HTTP) Fetch(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrStatus, h.URL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if debug.Feed() {
		debug.Logf("fetched %s: %d bytes\n", h.URL, len(data))
	}
	return shape{Decode: h.Decode, Select: h.Select, Mount: h.Mount}.apply(data)
}
