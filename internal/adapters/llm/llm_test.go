package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/ringlens/internal/config"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatBody struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

func TestGroqComplete(t *testing.T) {
	var got chatBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Great sleep!"}}]}`)
	}))
	defer srv.Close()

	g, err := NewGroq("key", WithBaseURL(srv.URL+"/"), WithModel("m"))
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), Request{System: "sys", User: "hi", MaxTokens: 150, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Great sleep!", text)
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 150, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "hi"}, got.Messages[1])
}

func TestGroqErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewGroq("")
		assert.ErrorIs(t, err, ErrNoAPIKey)
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"auth"}}`)
		}))
		defer srv.Close()

		g, _ := NewGroq("key", WithBaseURL(srv.URL))
		_, err := g.Complete(context.Background(), Request{User: "hi"})
		assert.ErrorIs(t, err, ErrAPI)
		assert.Contains(t, err.Error(), "bad key")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[]}`)
		}))
		defer srv.Close()

		g, _ := NewGroq("key", WithBaseURL(srv.URL))
		_, err := g.Complete(context.Background(), Request{User: "hi"})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestAnthropicComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"Nice "},{"type":"text","text":"work."}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	defer srv.Close()

	a, err := NewAnthropic("key", WithBaseURL(srv.URL), WithModel(groqModel))
	require.NoError(t, err)
	assert.Equal(t, anthropicModel, a.model)

	text, err := a.Complete(context.Background(), Request{System: "sys", User: "hi", MaxTokens: 250, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Nice work.", text)
	assert.EqualValues(t, 250, body["max_tokens"])
	assert.NotNil(t, body["system"])
}

type stubCompleter struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (s *stubCompleter) Provider() string { return "stub" }

func (s *stubCompleter) Complete(ctx context.Context, _ Request) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "ok", s.err
}

func TestLimited(t *testing.T) {
	t.Run("passes through", func(t *testing.T) {
		stub := &stubCompleter{}
		l := NewLimited(stub, WithRatePerMinute(60), WithTimeout(time.Second))
		text, err := l.Complete(context.Background(), Request{Operation: OpChat})
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, "stub", l.Provider())
	})

	t.Run("times out slow calls", func(t *testing.T) {
		stub := &stubCompleter{delay: time.Second}
		l := NewLimited(stub, WithTimeout(20*time.Millisecond))
		_, err := l.Complete(context.Background(), Request{Operation: OpSummary})
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("waits for tokens", func(t *testing.T) {
		stub := &stubCompleter{}
		l := NewLimited(stub, WithRatePerMinute(1), WithTimeout(50*time.Millisecond))
		_, err := l.Complete(context.Background(), Request{})
		require.NoError(t, err)
		_, err = l.Complete(context.Background(), Request{})
		assert.Error(t, err)
		assert.EqualValues(t, 1, stub.calls.Load())
	})

	t.Run("unlimited", func(t *testing.T) {
		stub := &stubCompleter{}
		l := NewLimited(stub, WithRatePerMinute(0))
		for i := 0; i < 10; i++ {
			_, err := l.Complete(context.Background(), Request{})
			require.NoError(t, err)
		}
	})
}

func TestNew(t *testing.T) {
	cfg := config.New(context.Background())

	cfg.LLMProvider = config.ProviderNone
	c, err := New(cfg)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrDisabled)

	cfg.LLMProvider = config.ProviderGroq
	cfg.LLMAPIKey = ""
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	cfg.LLMAPIKey = "key"
	c, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderGroq, c.Provider())

	cfg.LLMProvider = "Anthropic"
	c, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderAnthropic, c.Provider())

	cfg.LLMProvider = "openai"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
