package config

import "errors"

var (
	ErrConfig       = errors.New("invalid experiment configuration")
	ErrInvalidField = errors.New("invalid field")
	ErrNodeID       = errors.New("unable to read node ID")
)
