package tmpl

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/signadot/forjitree/libdoc"
	"github.com/signadot/forjitree/tree"
)

var ErrEval = errors.New("template evaluation failed")

type Env map[string]any

type options struct {
	node *tree.Node
}

type Option func(*options)

// WithNode makes lookup and path available to expressions, both relative
// to n.
func WithNode(n *tree.Node) Option {
	return func(o *options) { o.node = n }
}

type segment struct {
	text string
	expr bool
}

// Expand evaluates every block of tpl in env and returns the resulting
// text.
func Expand(tpl string, env Env, opts ...Option) (string, error) {
	segs := parse(tpl)
	if len(segs) == 1 && !segs[0].expr {
		return segs[0].text, nil
	}
	e := newEnv(env, opts)
	buf := &strings.Builder{}
	for _, s := range segs {
		if !s.expr {
			buf.WriteString(s.text)
			continue
		}
		v, err := run(s.text, e)
		if err != nil {
			return "", err
		}
		buf.WriteString(format(v))
	}
	return buf.String(), nil
}

// Eval is Expand, except that a template made of a single block yields
// the block's value unformatted.
func Eval(tpl string, env Env, opts ...Option) (any, error) {
	segs := parse(tpl)
	if len(segs) == 1 && segs[0].expr {
		return run(segs[0].text, newEnv(env, opts))
	}
	return Expand(tpl, env, opts...)
}

// ExpandAny returns a copy of the document v in which every string is
// replaced by its Eval result.
func ExpandAny(v any, env Env, opts ...Option) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			ev, err := ExpandAny(e, env, opts...)
			if err != nil {
				return nil, err
			}
			res[k] = ev
		}
		return res, nil
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			ev, err := ExpandAny(e, env, opts...)
			if err != nil {
				return nil, err
			}
			res[i] = ev
		}
		return res, nil
	case string:
		return Eval(x, env, opts...)
	}
	return v, nil
}

// Render expands tpl with the value of n as environment. A node holding
// a scalar or a sequence is available as "value".
func Render(n *tree.Node, tpl string) (string, error) {
	env := Env{}
	switch v := n.Value().(type) {
	case map[string]any:
		for k, e := range v {
			env[k] = e
		}
	default:
		env["value"] = v
	}
	return Expand(tpl, env, WithNode(n))
}

func newEnv(env Env, opts []Option) map[string]any {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	res := make(map[string]any, len(env)+2)
	for k, v := range env {
		res[k] = v
	}
	if n := o.node; n != nil {
		res["lookup"] = func(path string) any {
			if m := n.GetOne(path); m != nil {
				return m.Value()
			}
			return nil
		}
		res["path"] = func() string { return n.Path() }
	}
	return res
}

var programs sync.Map

func compile(src string) (*vm.Program, error) {
	if p, ok := programs.Load(src); ok {
		return p.(*vm.Program), nil
	}
	p, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	programs.Store(src, p)
	return p, nil
}

func run(src string, env map[string]any) (any, error) {
	p, err := compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling %q: %w", ErrEval, src, err)
	}
	v, err := vm.Run(p, env)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluating %q: %w", ErrEval, src, err)
	}
	return v, nil
}

func format(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return libdoc.Format(v)
}
