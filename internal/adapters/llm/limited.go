package llm

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/ringlens/pkg/metrics"
)

// Limited wraps a Completer with a token bucket, a per-call timeout and
// request metrics.
type Limited struct {
	next      Completer
	limiter   *rate.Limiter
	perMinute int
	timeout   time.Duration
}

// NewLimited wraps next.
func NewLimited(next Completer, opts ...LimitOption) *Limited {
	l := &Limited{next: next, perMinute: 30, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(l)
	}
	if l.perMinute > 0 {
		l.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
	} else {
		l.limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return l
}

func (l *Limited) Provider() string { return l.next.Provider() }

// Complete waits for a token, then calls the wrapped completer.
func (l *Limited) Complete(ctx context.Context, req Request) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		metrics.RecordLLMRequest(l.Provider(), req.Operation, "rate_limited", msSince(start))
		return "", err
	}

	text, err := l.next.Complete(ctx, req)
	metrics.RecordLLMRequest(l.Provider(), req.Operation, outcome(err), msSince(start))
	return text, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	default:
		return "error"
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
