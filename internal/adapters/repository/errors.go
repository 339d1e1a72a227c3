package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound   = errors.New("session not found")
	ErrNoSession  = errors.New("no data uploaded")
	ErrNilSession = errors.New("nil session")
)
