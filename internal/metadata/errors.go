package metadata

import "errors"

var (
	ErrStream    = errors.New("metadata stream error")
	ErrMalformed = errors.New("malformed metadata message")
)
