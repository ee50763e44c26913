package results

import "errors"

var (
	ErrCompress = errors.New("result compression failed")
	ErrDeliver  = errors.New("result delivery failed")
)
