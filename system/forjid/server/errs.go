package server

import "errors"

var (
	ErrConfig  = errors.New("invalid config")
	ErrRunning = errors.New("server already running")
)
