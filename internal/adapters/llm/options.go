package llm

import (
	"net/http"
	"time"
)

type clientOptions struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a provider client.
type ClientOption func(*clientOptions)

// WithModel sets the model name. Empty keeps the provider default.
func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at another endpoint. Empty keeps the default.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		if url != "" {
			o.baseURL = url
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// LimitOption configures a Limited completer.
type LimitOption func(*Limited)

// WithRatePerMinute allows n calls per minute with a burst of n. Zero or less
// removes the limit.
func WithRatePerMinute(n int) LimitOption {
	return func(l *Limited) {
		l.perMinute = n
	}
}

// WithTimeout bounds each call. Zero keeps the caller's deadline only.
func WithTimeout(d time.Duration) LimitOption {
	return func(l *Limited) {
		if d >= 0 {
			l.timeout = d
		}
	}
}
