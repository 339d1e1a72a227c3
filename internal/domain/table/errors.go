package table

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile    = errors.New("no columns to parse from file")
	ErrMalformedRow = errors.New("error tokenizing data")
)

// FileError ties a parse failure to the uploaded file it came from.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("Error reading %s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
