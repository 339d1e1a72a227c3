package service

import (
	"github.com/okian/ringlens/internal/adapters/llm"
	"github.com/okian/ringlens/internal/adapters/repository"
	"github.com/okian/ringlens/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the session store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCompleter sets the language model client.
func WithCompleter(c llm.Completer) Option {
	return func(s *Service) {
		if c != nil {
			s.completer = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithParseConcurrency bounds how many files are parsed at once.
func WithParseConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parseConcurrency = n
		}
	}
}

// WithSummaryMaxTokens caps the summary reply.
func WithSummaryMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.summaryMaxTokens = n
		}
	}
}

// WithChatMaxTokens caps the chat reply.
func WithChatMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chatMaxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature for both calls.
func WithTemperature(t float64) Option {
	return func(s *Service) {
		if t >= 0 {
			s.temperature = t
		}
	}
}
