package build

import "errors"

var (
	ErrRecipe        = errors.New("invalid recipe")
	ErrBuild         = errors.New("build failed")
	ErrCommandFailed = errors.New("command failed")
	ErrCopy          = errors.New("copy failed")
)
