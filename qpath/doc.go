// Package qpath tokenizes query paths used to navigate forjitree trees.
//
// A query path is a sequence of steps separated by '/'. Filter steps are
// written in brackets and may directly follow any step.
//
//	name          child named "name"
//	.  @          the current node
//	..            parent
//	...           all ancestors, nearest first
//	/a            leading '/' starts at the root
//	!..           the root
//	*             direct children
//	**            all descendants, not including the current node
//	[k=v,k2]      filter
//
// Filter parameters are comma separated and may be double quoted:
//
//	k=v           child k has scalar value v (empty v means presence)
//	k!=v          child k is absent or its value differs from v
//	k>v k<v       numeric comparisons, also >= and <=
//	k~re          child value matches the regular expression re
//	k             child k is present
//	!k            child k is absent
//
// The pseudo key PARENT_KEY refers to the key of the node itself under its
// parent rather than to a child.
//
// A backslash escapes the next character, so `a\/b` names the child "a/b".
//
// Parsing never fails: tokens which cannot be understood become Self
// steps.
//
// # Related Packages
//
//   - github.com/signadot/forjitree/tree - resolves steps against nodes
package qpath
