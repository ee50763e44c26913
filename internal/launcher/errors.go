package launcher

import "errors"

var (
	ErrLauncher = errors.New("launcher error")
	ErrRoaming  = errors.New("roaming not authorised")
)
