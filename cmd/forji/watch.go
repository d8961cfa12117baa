package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/scott-cotton/cli"

	"github.com/signadot/forjitree/datasource"
	"github.com/signadot/forjitree/tmpl"
	"github.com/signadot/forjitree/tree"
)

func watchURL(cfg *WatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Watch.Parse(cc, args)
	if err != nil {
		cfg.Watch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: watch requires one url", cli.ErrUsage)
	}
	opts := &datasource.Options{
		Select:   cfg.Select,
		Mount:    cfg.Mount,
		Interval: cfg.Every,
		Log:      theLog,
		OnError: func(err error) {
			theLog.Warn("datasource error", "error", err)
		},
	}
	if cfg.Y {
		opts.Decode = datasource.DecodeYAML
	}
	src, err := datasource.New(args[0], opts)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}

	t := tree.New(tree.WithName(args[0]), tree.WithLogger(theLog))
	feed := datasource.NewFeed(t)
	var printErr error
	feed.OnChange(func(_ any, _ []*tree.Node) {
		if err := cfg.printTree(cc.Out, t); err != nil && printErr == nil {
			printErr = err
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = src.Run(ctx, feed.Deliver)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return err
	}
	return printErr
}

func (cfg *WatchConfig) printTree(w io.Writer, t *tree.Tree) error {
	if cfg.Tmpl == "" {
		return cfg.writeValue(w, t.GetValue())
	}
	s, err := tmpl.Render(t.Root(), cfg.Tmpl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
