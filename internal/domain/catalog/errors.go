package catalog

import "errors"

var (
	ErrUnknownKind   = errors.New("unrecognised export")
	ErrUnknownChart  = errors.New("unknown chart")
	ErrFileNotLoaded = errors.New("file not loaded")
)
