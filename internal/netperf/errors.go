package netperf

import "errors"

var (
	ErrInvalidSpec = errors.New("invalid measurement spec")
	ErrInterface   = errors.New("interface resolution failed")
	ErrRun         = errors.New("netperfmeter run failed")
)
