package qpath

import (
	"regexp"
	"strings"
)

// Op is the comparison a filter parameter performs.
type Op int

const (
	Equals Op = iota
	Present
	NotEquals
	Absent
	Greater
	Less
	GreaterOrEquals
	LessOrEquals
	Matches
)

var opStrings = map[Op]string{
	Equals:          "=",
	NotEquals:       "!=",
	Greater:         ">",
	Less:            "<",
	GreaterOrEquals: ">=",
	LessOrEquals:    "<=",
	Matches:         "~",
}

// ParentKey is the pseudo key which makes a filter parameter test the key
// of the node itself rather than one of its children.
const ParentKey = "PARENT_KEY"

// Param is one comparison of a filter step.
type Param struct {
	Key    string
	Value  string
	Op     Op
	Regexp *regexp.Regexp // Matches only; nil if Value did not compile
}

func (p Param) String() string {
	switch p.Op {
	case Present:
		return quoteParam(p.Key)
	case Absent:
		return "!" + quoteParam(p.Key)
	}
	return quoteParam(p.Key + opStrings[p.Op] + p.Value)
}

func quoteParam(s string) string {
	if strings.ContainsAny(s, `,"`) {
		return `"` + s + `"`
	}
	return s
}

// parseParams splits the inside of a filter on commas which are not
// inside double quotes, then parses each parameter.
func parseParams(s string) []Param {
	var (
		res    []Param
		cur    = &strings.Builder{}
		quoted bool
	)
	flush := func() {
		p := strings.TrimSpace(cur.String())
		cur.Reset()
		if p == "" {
			return
		}
		res = append(res, parseParam(p))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == escapeChar && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return res
}

func parseParam(p string) Param {
	i := strings.IndexAny(p, "!=<>~")
	if i < 0 {
		return Param{Key: p, Op: Present}
	}
	key, rest := p[:i], p[i:]
	switch {
	case strings.HasPrefix(rest, "!="):
		return Param{Key: key, Value: rest[2:], Op: NotEquals}
	case strings.HasPrefix(rest, ">="):
		return Param{Key: key, Value: rest[2:], Op: GreaterOrEquals}
	case strings.HasPrefix(rest, "<="):
		return Param{Key: key, Value: rest[2:], Op: LessOrEquals}
	case rest[0] == '=':
		return Param{Key: key, Value: rest[1:], Op: Equals}
	case rest[0] == '>':
		return Param{Key: key, Value: rest[1:], Op: Greater}
	case rest[0] == '<':
		return Param{Key: key, Value: rest[1:], Op: Less}
	case rest[0] == '~':
		re, _ := regexp.Compile(rest[1:])
		return Param{Key: key, Value: rest[1:], Op: Matches, Regexp: re}
	case i == 0:
		// leading '!' not followed by '='
		return Param{Key: p[1:], Op: Absent}
	}
	return Param{Key: p, Op: Present}
}
