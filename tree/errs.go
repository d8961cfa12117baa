package tree

import "errors"

var (
	ErrNilConstructor = errors.New("nil object constructor")
	ErrEmptyTypeName  = errors.New("empty type name")
	ErrUnknownBase    = errors.New("unknown base type")
	ErrBadQuery       = errors.New("map expected in sub query")
	ErrJSONPatch      = errors.New("json patch")
)
