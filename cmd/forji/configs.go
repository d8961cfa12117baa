package main

import (
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	Y     bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`
	Color bool `cli:"name=color desc='output with color'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

// colors reports whether output to w is colored: -color forces it on or
// off, otherwise terminals get colors.
func (cfg *MainConfig) colors(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	if cfg.Main != nil {
		for _, opt := range cfg.Main.Opts {
			if opt.Name == "color" && opt.Value != nil {
				return false
			}
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// palette returns the colors used for output to w.
func (cfg *MainConfig) palette(w io.Writer) *palette {
	p := &palette{
		path:   color.New(color.FgYellow),
		insert: color.New(color.FgGreen),
		delete: color.New(color.FgRed, color.CrossedOut),
	}
	if cfg.colors(w) {
		p.path.EnableColor()
		p.insert.EnableColor()
		p.delete.EnableColor()
	} else {
		p.path.DisableColor()
		p.insert.DisableColor()
		p.delete.DisableColor()
	}
	return p
}

type palette struct {
	path, insert, delete *color.Color
}

type GetConfig struct {
	*MainConfig
	Tmpl string `cli:"name=tmpl desc='render each match with a template'"`

	Get *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Quiet bool `cli:"name=q desc='only list changed paths'"`

	Diff *cli.Command
}

type ApplyConfig struct {
	*MainConfig

	Apply *cli.Command
}

type ServeConfig struct {
	*MainConfig
	ConfigFile  string `cli:"name=config desc='configuration file (yaml)'"`
	Addr        string `cli:"name=addr desc='HTTP listen address'"`
	Datasources bool   `cli:"name=ds desc='enable the Datasource object type'"`

	Serve *cli.Command
}

type WatchConfig struct {
	*MainConfig
	Select string `cli:"name=select desc='gjson path selecting part of each payload'"`
	Mount  string `cli:"name=mount desc='path to mount each payload under'"`
	Tmpl   string `cli:"name=tmpl desc='render the tree with a template'"`
	Every  time.Duration

	Watch *cli.Command
}

func (cfg *WatchConfig) mkEvery() func(cc *cli.Context, a string) (any, error) {
	return func(_ *cli.Context, a string) (any, error) {
		d, err := time.ParseDuration(a)
		if err != nil {
			return nil, err
		}
		cfg.Every = d
		return d, nil
	}
}
