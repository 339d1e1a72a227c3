package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoFiles            = errors.New("no files provided")
	ErrNoValidFiles       = errors.New("no valid csv files found")
	ErrNoRecognizedExport = errors.New("no recognised export found")
	ErrEmptyMessage       = errors.New("no message provided")
	ErrChatFailed         = errors.New("chat completion failed")
)
