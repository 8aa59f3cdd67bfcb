package confirm

import "errors"

var (
	ErrNoAnswer    = errors.New("input closed before an answer was given")
	ErrInterrupted = errors.New("interrupted")
)
