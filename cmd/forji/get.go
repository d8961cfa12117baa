package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/signadot/forjitree/tmpl"
	"github.com/signadot/forjitree/tree"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a path", cli.ErrUsage)
	}
	t, err := cfg.loadTree(cc.In, args[1:])
	if err != nil {
		return err
	}
	return cfg.printMatches(cc.Out, t.Get(args[0]))
}

func (cfg *GetConfig) printMatches(w io.Writer, nodes []*tree.Node) error {
	for _, n := range nodes {
		if cfg.Tmpl != "" {
			s, err := tmpl.Render(n, cfg.Tmpl)
			if err != nil {
				return fmt.Errorf("error rendering %s: %w", n, err)
			}
			fmt.Fprintln(w, s)
			continue
		}
		if err := cfg.writeValue(w, n.Value()); err != nil {
			return err
		}
	}
	return nil
}
