// Package libdoc provides helpers for the JSON-like document model that
// forjitree trees consume and produce.
//
// A document is one of
//
//   - map[string]any
//   - []any
//   - a scalar: nil, bool, string or a number
//
// Values decoded by encoding/json, goccy/go-yaml and friends, as well as
// typed Go maps and slices, can be brought into this shape with Normalize.
//
// # Usage
//
//	doc := libdoc.Normalize(map[string][]int{"n": {1, 2}})
//	libdoc.KindOf(doc)                       // ObjectKind
//	libdoc.Equal(1, 1.0)                     // true
//	libdoc.PatchAt("a/b", 3, false)          // map[a:map[b:3]]
//	libdoc.MergeChanges(old, next)           // accumulate deliveries
package libdoc
