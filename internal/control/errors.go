package control

import "errors"

var (
	ErrProtocol = errors.New("control protocol error")
	ErrServer   = errors.New("control server error")
	ErrClient   = errors.New("control client error")
)
