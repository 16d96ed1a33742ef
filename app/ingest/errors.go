package ingest

import "errors"

var (
	ErrUnsupportedScheme = errors.New("only https feed URLs are supported")
	ErrAlreadyExists     = errors.New("feed already exists")
)
