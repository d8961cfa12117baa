package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/signadot/forjitree/datasource"
	"github.com/signadot/forjitree/tree"
)

// readDoc decodes the document in file, or in r if file is "-".
func (cfg *MainConfig) readDoc(r io.Reader, file string) (any, error) {
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	decode := datasource.DecodeJSON
	if cfg.Y {
		decode = datasource.DecodeYAML
	}
	doc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", file, err)
	}
	return doc, nil
}

// loadTree merges files into a new tree in order. No files means stdin.
func (cfg *MainConfig) loadTree(r io.Reader, files []string) (*tree.Tree, error) {
	if len(files) == 0 {
		files = []string{"-"}
	}
	t := tree.New(tree.WithLogger(theLog))
	for _, file := range files {
		doc, err := cfg.readDoc(r, file)
		if err != nil {
			return nil, err
		}
		t.Set(doc)
	}
	t.Created()
	return t, nil
}

// writeValue writes v as indented JSON, or YAML with -y.
func (cfg *MainConfig) writeValue(w io.Writer, v any) error {
	if cfg.Y {
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
