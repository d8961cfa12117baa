package qpath

import (
	"strings"
)

// Kind is the kind of a query step.
type Kind int

const (
	Self Kind = iota
	Parent
	Root
	Child
	Filter
	Children
	Descendants
	Ancestors
)

func (k Kind) String() string {
	switch k {
	case Self:
		return "self"
	case Parent:
		return "parent"
	case Root:
		return "root"
	case Child:
		return "child"
	case Filter:
		return "filter"
	case Children:
		return "children"
	case Descendants:
		return "descendants"
	case Ancestors:
		return "ancestors"
	}
	return "unknown"
}

// Step is a single step of a query path.
type Step struct {
	Kind   Kind
	Key    string  // Child only
	Params []Param // Filter only
}

// String returns the canonical textual form of the step, as it would
// appear after a '/' (or directly, for filters).
func (s Step) String() string {
	switch s.Kind {
	case Self:
		return "."
	case Parent:
		return ".."
	case Root:
		return "!.."
	case Child:
		return escapeKey(s.Key)
	case Children:
		return "*"
	case Descendants:
		return "**"
	case Ancestors:
		return "..."
	case Filter:
		parts := make([]string, len(s.Params))
		for i := range s.Params {
			parts[i] = s.Params[i].String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return "."
}

// String returns the textual form of a parsed path.
func String(steps []Step) string {
	buf := &strings.Builder{}
	for i, s := range steps {
		if i > 0 && s.Kind != Filter {
			buf.WriteByte('/')
		}
		buf.WriteString(s.String())
	}
	return buf.String()
}

const (
	sepChar         = '/'
	filterOpenChar  = '['
	filterCloseChar = ']'
	escapeChar      = '\\'
)

type rawToken struct {
	text    string
	escaped bool
}

// Parse splits a query path into steps. The result always contains at
// least one step; the empty path is a single Self step.
func Parse(path string) []Step {
	raw := split(path)
	steps := make([]Step, 0, len(raw))
	for i, tok := range raw {
		steps = append(steps, classify(raw, i, tok))
	}
	return steps
}

func split(path string) []rawToken {
	var (
		toks  []rawToken
		cur   = &strings.Builder{}
		esc   bool
		depth int
	)
	flush := func() {
		toks = append(toks, rawToken{text: cur.String(), escaped: esc})
		cur.Reset()
		esc = false
	}
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == escapeChar {
			i++
			if i >= len(path) {
				break
			}
			if depth > 0 {
				// kept verbatim: filters do their own unescaping
				cur.WriteByte(c)
			}
			cur.WriteByte(path[i])
			esc = true
			continue
		}
		switch {
		case c == sepChar && depth == 0:
			flush()
		case c == filterOpenChar:
			if depth == 0 {
				flush()
			}
			depth++
		case c == filterCloseChar && depth > 0:
			depth--
		}
		cur.WriteByte(c)
	}
	flush()
	return toks
}

func classify(toks []rawToken, i int, tok rawToken) Step {
	ts := tok.text
	is := func(word string) bool {
		return !tok.escaped && ((i == 0 && ts == word) || ts == "/"+word)
	}
	switch {
	case i == 0 && ts == "" && len(toks) > 1 && strings.HasPrefix(toks[1].text, "/"):
		return Step{Kind: Root}
	case is("@"), is("."):
		return Step{Kind: Self}
	case is("!.."):
		return Step{Kind: Root}
	case is(".."):
		return Step{Kind: Parent}
	case is("..."):
		return Step{Kind: Ancestors}
	case is("*"):
		return Step{Kind: Children}
	case is("**"):
		return Step{Kind: Descendants}
	case strings.HasPrefix(ts, "[") && strings.HasSuffix(ts, "]") && len(ts) >= 2:
		return Step{Kind: Filter, Params: parseParams(ts[1 : len(ts)-1])}
	case strings.HasPrefix(ts, "/"):
		if len(ts) > 1 {
			return Step{Kind: Child, Key: ts[1:]}
		}
		return Step{Kind: Self}
	case i == 0 && ts != "":
		return Step{Kind: Child, Key: ts}
	}
	return Step{Kind: Self}
}

func escapeKey(k string) string {
	switch k {
	case ".", "..", "...", "@", "!..", "*", "**":
		return `\` + k
	}
	if !strings.ContainsAny(k, `/[]\`) {
		return k
	}
	buf := &strings.Builder{}
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case sepChar, filterOpenChar, filterCloseChar, escapeChar:
			buf.WriteByte(escapeChar)
		}
		buf.WriteByte(k[i])
	}
	return buf.String()
}

// Join builds a path of Child steps from literal keys, escaping as
// needed.
func Join(keys ...string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = escapeKey(k)
	}
	return strings.Join(parts, "/")
}
