package downloader

import "errors"

var (
	ErrNoTransport = errors.New("no transport configured")
	ErrEmptyTarget = errors.New("empty destination path")
)
