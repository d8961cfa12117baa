package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		cfg.Apply.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: apply requires a patch file and at most one document", cli.ErrUsage)
	}
	ops, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading patch: %w", err)
	}
	t, err := cfg.loadTree(cc.In, args[1:])
	if err != nil {
		return err
	}
	if _, err := t.ApplyJSONPatch(ops); err != nil {
		return err
	}
	return cfg.writeValue(cc.Out, t.GetValue())
}
