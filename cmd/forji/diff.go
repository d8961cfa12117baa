package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/scott-cotton/cli"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/signadot/forjitree/tree"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := cfg.readDoc(cc.In, args[0])
	if err != nil {
		return err
	}
	b, err := cfg.readDoc(cc.In, args[1])
	if err != nil {
		return err
	}
	differs, err := cfg.diffDocs(cc.Out, a, b)
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// diffDocs merges b over a and writes the changed paths, descendants
// first, followed by a line diff of the two values.
func (cfg *DiffConfig) diffDocs(w io.Writer, a, b any) (bool, error) {
	t := tree.New(tree.WithLogger(theLog))
	t.Set(a)
	var before bytes.Buffer
	if err := cfg.writeValue(&before, t.GetValue()); err != nil {
		return false, err
	}
	changed := t.Set(b)
	if len(changed) == 0 {
		return false, nil
	}
	pal := cfg.palette(w)
	for _, n := range changed {
		pal.path.Fprintln(w, n.String())
	}
	if cfg.Quiet {
		return true, nil
	}
	var after bytes.Buffer
	if err := cfg.writeValue(&after, t.GetValue()); err != nil {
		return false, err
	}
	fmt.Fprintln(w)
	writeLineDiff(w, pal, before.String(), after.String())
	return true, nil
}

func writeLineDiff(w io.Writer, pal *palette, from, to string) {
	dmp := diffmatchpatch.New()
	f, t, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(f, t, false), lines)
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				pal.insert.Fprintln(w, "+ "+line)
			case diffmatchpatch.DiffDelete:
				pal.delete.Fprintln(w, "- "+line)
			default:
				fmt.Fprintln(w, "  "+line)
			}
		}
	}
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
