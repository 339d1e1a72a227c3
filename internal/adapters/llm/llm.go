// Package llm talks to the hosted language models used for the upload
// summary and the chat assistant.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/ringlens/internal/config"
)

// Operation labels.
const (
	OpSummary = "summary"
	OpChat    = "chat"
)

// Request is a single-turn completion: one system prompt, one user message.
type Request struct {
	Operation   string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completer returns the model's text reply for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}

// New builds the completer configured by cfg, wrapped with its rate limit
// and timeout.
func New(cfg *config.Config) (Completer, error) {
	var c Completer
	switch strings.ToLower(cfg.LLMProvider) {
	case config.ProviderNone, "":
		return Disabled{}, nil
	case config.ProviderGroq:
		g, err := NewGroq(cfg.LLMAPIKey, WithModel(cfg.LLMModel), WithBaseURL(cfg.LLMBaseURL))
		if err != nil {
			return nil, err
		}
		c = g
	case config.ProviderAnthropic:
		a, err := NewAnthropic(cfg.LLMAPIKey, WithModel(cfg.LLMModel), WithBaseURL(cfg.LLMBaseURL))
		if err != nil {
			return nil, err
		}
		c = a
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.LLMProvider)
	}
	return NewLimited(c, WithRatePerMinute(cfg.LLMRatePerMinute), WithTimeout(cfg.LLMTimeout())), nil
}

// Disabled never calls out. Every request fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Complete(context.Context, Request) (string, error) { return "", ErrDisabled }
func (Disabled) Provider() string                                  { return config.ProviderNone }
