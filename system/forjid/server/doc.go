// Package server implements forjid, an HTTP server publishing a tree.
//
// Clients read the whole document with GET /, merge documents into it
// with POST / and follow its changes either by polling
// GET /watch?watcherId=ID or over the websocket at /ws. A watcher's first
// read returns the full document, later reads the changes merged since
// the previous one.
package server
