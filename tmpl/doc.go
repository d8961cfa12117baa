// Package tmpl interpolates string templates against tree data.
//
// A template is literal text with expression blocks in braces:
//
//	Hello {name}, you have {len(messages)} messages
//
// Blocks are evaluated with github.com/expr-lang/expr against an
// environment, usually the value of a tree node. Braces nest, so map
// literals and closures may appear inside a block, and braces inside
// quoted strings are ignored. A backslash escapes '{', '}' and itself.
// A block that is never closed is copied verbatim.
//
// When the environment comes from a node (see [WithNode] and [Render]),
// two functions are available besides expr's builtins:
//
//	lookup(path)  the value at a query path relative to the node
//	path()        the path of the node
package tmpl
