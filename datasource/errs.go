package datasource

import "errors"

var (
	ErrUnsupportedScheme = errors.New("unsupported datasource scheme")
	ErrStatus            = errors.New("unexpected http status")
	ErrDecode            = errors.New("decode error")
)
