package runtime

import "errors"

var (
	ErrRuntime        = errors.New("runtime error")
	ErrSibling        = errors.New("sibling container unavailable")
	ErrEmptyArchive   = errors.New("archive contains no image")
	ErrMultipleImages = errors.New("archive contains multiple images")
	ErrEmptyIndex     = errors.New("empty image index")
)
