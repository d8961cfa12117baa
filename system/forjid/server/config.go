package server

import (
	"log/slog"
)

// Spec holds the runtime specification for the forjid server.
// Config contains the serializable settings loaded from a file.
type Spec struct {
	Config *Config
	Addr   string // overrides Config.Addr
	Log    *slog.Logger
}
