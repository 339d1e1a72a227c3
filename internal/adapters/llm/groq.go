package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/okian/ringlens/internal/config"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "llama-3.3-70b-versatile"
)

// Groq calls Groq's OpenAI-compatible chat completions endpoint.
type Groq struct {
	client *openai.Client
	model  string
}

// NewGroq creates a Groq client.
func NewGroq(apiKey string, opts ...ClientOption) (*Groq, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: groq", ErrNoAPIKey)
	}
	o := clientOptions{model: groqModel, baseURL: groqBaseURL}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	return &Groq{client: openai.NewClientWithConfig(cfg), model: o.model}, nil
}

func (g *Groq) Provider() string { return config.ProviderGroq }

// Complete sends one chat completion request.
func (g *Groq) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAPI, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
