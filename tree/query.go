package tree

import (
	"strconv"
	"strings"

	"github.com/signadot/forjitree/debug"
	"github.com/signadot/forjitree/libdoc"
	"github.com/signadot/forjitree/qpath"
)

// maxIndirection bounds the nesting of '@' references followed by one
// query, which cuts reference cycles.
const maxIndirection = 32

// Get resolves path starting at n. The empty path yields n itself.
func (n *Node) Get(path string) []*Node {
	return n.get(path, 0)
}

// GetOne returns the first node Get returns, or nil.
func (n *Node) GetOne(path string) *Node {
	return first(n.get(path, 0))
}

func first(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (n *Node) get(path string, depth int) []*Node {
	res := []*Node{n}
	for _, step := range qpath.Parse(path) {
		res = resolveStep(res, step, depth)
	}
	if debug.Query() {
		debug.Logf("get %s %q: %d nodes\n", n, path, len(res))
	}
	return res
}

// collector accumulates the nodes of one step, following references and
// redirects and dropping duplicates.
type collector struct {
	depth int
	nodes []*Node
	seen  map[*Node]struct{}
}

func (c *collector) add(n *Node) {
	if n == nil {
		return
	}
	if s, ok := n.value.(string); ok && n.kind == ValueKind && n.parent != nil && strings.HasPrefix(s, "@") {
		if c.depth >= maxIndirection {
			n.tree.log.Warn("query reference too deep", "path", n.Path(), "ref", s)
			return
		}
		for _, r := range n.parent.get(s[1:], c.depth+1) {
			c.push(r)
		}
		return
	}
	if r, ok := n.obj.(Redirector); ok && n.objType != nil {
		for _, x := range r.Redirect() {
			c.push(x)
		}
		return
	}
	c.push(n)
}

func (c *collector) push(n *Node) {
	if n == nil {
		return
	}
	if _, dup := c.seen[n]; dup {
		return
	}
	if c.seen == nil {
		c.seen = map[*Node]struct{}{}
	}
	c.seen[n] = struct{}{}
	c.nodes = append(c.nodes, n)
}

func resolveStep(nodes []*Node, step qpath.Step, depth int) []*Node {
	c := &collector{depth: depth}
	for _, n := range nodes {
		switch step.Kind {
		case qpath.Self:
			c.add(n)
		case qpath.Parent:
			c.add(n.parent)
		case qpath.Ancestors:
			for p := n.parent; p != nil; p = p.parent {
				c.add(p)
			}
		case qpath.Root:
			c.add(n.tree.root)
		case qpath.Child:
			c.add(n.child(step.Key))
		case qpath.Children:
			for _, ch := range n.children() {
				c.add(ch)
			}
		case qpath.Descendants:
			n.walk(c.add)
		case qpath.Filter:
			if n.matches(step.Params, depth) {
				c.add(n)
			}
		}
	}
	return c.nodes
}

func (n *Node) matches(params []qpath.Param, depth int) bool {
	for i := range params {
		if !n.matchParam(&params[i], depth) {
			return false
		}
	}
	return true
}

func (n *Node) matchParam(p *qpath.Param, depth int) bool {
	var (
		subject any
		present bool
	)
	if p.Key == qpath.ParentKey {
		subject, present = n.parentKey, n.parent != nil
	} else if c := first(n.get(p.Key, depth)); c != nil {
		subject, present = c.Value(), true
	}

	switch p.Op {
	case qpath.Present:
		return present
	case qpath.Absent:
		return !present
	case qpath.Equals:
		return present && (p.Value == "" || libdoc.Format(subject) == p.Value)
	case qpath.NotEquals:
		return !present || libdoc.Format(subject) != p.Value
	case qpath.Matches:
		return present && p.Regexp != nil && p.Regexp.MatchString(libdoc.Format(subject))
	}

	if !present {
		return false
	}
	sf, ok := libdoc.Float(subject)
	if !ok {
		return false
	}
	pf, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return false
	}
	switch p.Op {
	case qpath.Greater:
		return sf > pf
	case qpath.Less:
		return sf < pf
	case qpath.GreaterOrEquals:
		return sf >= pf
	case qpath.LessOrEquals:
		return sf <= pf
	}
	return false
}

// Query returns a document built from the subtree of n. A nil query
// returns the value of n. A string query returns the values of the
// matching nodes, each placed at its full path prefixed with its tree's
// name. A map query projects the subtree on the keys of the map, with
// sequences projecting each element on the same query.
func (n *Node) Query(q any) (any, error) {
	switch x := q.(type) {
	case nil:
		return n.Value(), nil
	case string:
		res := map[string]any{}
		for _, m := range n.Get(x) {
			keys := m.keyPath()
			if name := m.tree.name; name != "" {
				keys = append([]string{name}, keys...)
			}
			patch := libdoc.PatchAtKeys(keys, m.Value(), true)
			if pm, ok := patch.(map[string]any); ok {
				libdoc.Merge(res, pm)
			}
		}
		return res, nil
	}

	if n.kind == ValueKind {
		return n.value, nil
	}
	qm, ok := libdoc.Normalize(q).(map[string]any)
	if !ok {
		return nil, ErrBadQuery
	}
	if n.kind == SliceKind {
		res := make([]any, 0, len(n.sl))
		for _, c := range n.sl {
			item, err := c.Query(qm)
			if err == nil {
				res = append(res, item)
			}
		}
		return res, nil
	}
	res := make(map[string]any, len(qm))
	for k, sub := range qm {
		c := n.m[k]
		if c == nil {
			res[k] = nil
			continue
		}
		item, err := c.Query(sub)
		if err == nil {
			res[k] = item
		}
	}
	return res, nil
}
