package llm

import "errors"

// Sentinel kinds for model errors.
var (
	ErrDisabled        = errors.New("llm disabled")
	ErrNoAPIKey        = errors.New("llm api key not set")
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrEmptyResponse   = errors.New("empty llm response")
	ErrAPI             = errors.New("llm api error")
)
