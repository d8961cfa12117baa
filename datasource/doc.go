// Package datasource connects remote documents to trees.
//
// A [Source] produces a stream of documents: [HTTP] fetches a URL once or
// polls it, [WebSocket] reads the messages of a push connection and
// reconnects when it drops. Each document can be narrowed with a
// [gjson] path (Select) and wrapped under a path (Mount) before it is
// delivered, typically to a [Feed] which merges it into a tree.
//
// [Register] adds the "Datasource" object type to a tree. A map node
// such as
//
//	prices:
//	  object: Datasource
//	  url: ws://localhost:8080/ws
//
// binds an [Object] which runs the source for its url into a tree of its
// own. Queries through the node are redirected to that tree.
//
// [gjson]: https://github.com/tidwall/gjson
package datasource
