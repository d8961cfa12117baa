package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/signadot/forjitree/libdoc"
)

// DecodeFunc turns a payload into a document.
type DecodeFunc func(data []byte) (any, error)

// DecodeJSON decodes data keeping integers exact.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrDecode, err)
	}
	return libdoc.Normalize(v), nil
}

// DecodeYAML decodes a YAML document. JSON is valid input too.
func DecodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrDecode, err)
	}
	return libdoc.Normalize(v), nil
}

type shape struct {
	Decode DecodeFunc
	Select string
	Mount  string
}

// apply decodes data and applies select then mount. A select path which
// matches nothing yields null.
func (s shape) apply(data []byte) (any, error) {
	decode := s.Decode
	if decode == nil {
		decode = DecodeJSON
	}
	if s.Select == "" && s.Mount == "" {
		return decode(data)
	}
	if !json.Valid(data) {
		doc, err := decode(data)
		if err != nil {
			return nil, err
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}
	raw := data
	if s.Select != "" {
		res := gjson.GetBytes(data, s.Select)
		if !res.Exists() {
			raw = []byte("null")
		} else {
			raw = []byte(res.Raw)
		}
	}
	if s.Mount != "" {
		var err error
		raw, err = sjson.SetRawBytes([]byte("{}"), s.Mount, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: mount %q: %w", ErrDecode, s.Mount, err)
		}
	}
	return DecodeJSON(raw)
}
