package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Patch bool
	Sync  bool
	Query bool
	Watch bool
	Feed  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Patch = boolEnv("FORJI_DEBUG_PATCH")
	d.Sync = boolEnv("FORJI_DEBUG_SYNC")
	d.Query = boolEnv("FORJI_DEBUG_QUERY")
	d.Watch = boolEnv("FORJI_DEBUG_WATCH")
	d.Feed = boolEnv("FORJI_DEBUG_FEED")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Patch() bool {
	return d.Patch
}
func Sync() bool {
	return d.Sync
}
func Query() bool {
	return d.Query
}
func Watch() bool {
	return d.Watch
}
func Feed() bool {
	return d.Feed
}

// LogAny writes v to stderr as a line of JSON.
func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
	os.Stderr.Write([]byte{'\n'})
}
