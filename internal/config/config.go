// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and RINGLENS_* env vars.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"
)

// LLM provider names.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr" validate:"required"`

	// MaxUploadMB caps the multipart body accepted by POST /upload.
	MaxUploadMB int `koanf:"max_upload_mb" validate:"min=1,max=1024"`

	// MaxSessions bounds how many upload sessions are kept in memory.
	MaxSessions int `koanf:"max_sessions" validate:"min=1"`

	// SessionTTLMinutes evicts sessions older than this. 0 disables expiry.
	SessionTTLMinutes int `koanf:"session_ttl_minutes" validate:"min=0"`

	// ParseConcurrency bounds concurrent CSV parsing within one upload.
	ParseConcurrency int `koanf:"parse_concurrency" validate:"min=1,max=64"`

	// LLMProvider selects the summary/chat backend: groq, anthropic or none.
	LLMProvider string `koanf:"llm_provider" validate:"oneof=groq anthropic none"`

	// LLMAPIKey authenticates against the provider. When empty the
	// provider-specific variable (GROQ_API_KEY, ANTHROPIC_API_KEY) is used.
	LLMAPIKey string `koanf:"llm_api_key"`

	// LLMModel is the provider model identifier.
	LLMModel string `koanf:"llm_model"`

	// LLMBaseURL overrides the provider endpoint.
	LLMBaseURL string `koanf:"llm_base_url" validate:"omitempty,url"`

	// LLMTimeoutSeconds bounds a single completion call.
	LLMTimeoutSeconds int `koanf:"llm_timeout_seconds" validate:"min=1,max=600"`

	// LLMRatePerMinute throttles outbound completion calls.
	LLMRatePerMinute int `koanf:"llm_rate_per_minute" validate:"min=1"`

	SummaryMaxTokens int     `koanf:"summary_max_tokens" validate:"min=1"`
	ChatMaxTokens    int     `koanf:"chat_max_tokens" validate:"min=1"`
	Temperature      float64 `koanf:"temperature" validate:"min=0,max=2"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":5000",
		MaxUploadMB:       32,
		MaxSessions:       16,
		SessionTTLMinutes: 120,
		ParseConcurrency:  4,
		LLMProvider:       ProviderGroq,
		LLMModel:          "llama-3.3-70b-versatile",
		LLMTimeoutSeconds: 30,
		LLMRatePerMinute:  30,
		SummaryMaxTokens:  150,
		ChatMaxTokens:     250,
		Temperature:       0.7,
	}
}

// LLMTimeout returns LLMTimeoutSeconds as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// SessionTTL returns SessionTTLMinutes as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
