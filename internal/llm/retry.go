package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures of the wrapped Provider.
type RetryProvider struct {
	inner  Provider
	policy RetryConfig
}

// WithRetry wraps p so transient failures are retried per cfg.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &RetryProvider{inner: p, policy: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var budget attemptBudget
	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt+1 >= r.policy.MaxAttempts || !budget.allow(err) {
			return nil, err
		}

		timer := time.NewTimer(r.policy.delay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// attemptBudget decides per failure whether another attempt is allowed.
// A schema violation is retried once per call since the model rarely
// repeats the same mistake twice in a row.
type attemptBudget struct {
	invalidSeen bool
}

func (b *attemptBudget) allow(err error) bool {
	var (
		truncated *ErrMaxTokensExceeded
		invalid   *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &truncated):
		return false
	case errors.As(err, &invalid):
		if b.invalidSeen {
			return false
		}
		b.invalidSeen = true
	}
	return true
}

// delay is the pause before attempt+1. A rate limit with a Retry-After hint
// waits exactly that long; otherwise the wait grows by Multiplier from
// InitialWait, capped at MaxWait, with ±20% jitter.
func (c RetryConfig) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(c.InitialWait)
	for range attempt {
		wait *= c.Multiplier
		if wait >= float64(c.MaxWait) {
			break
		}
	}
	wait = min(wait, float64(c.MaxWait))
	jitter := 1 + 0.4*(rand.Float64()-0.5)
	return time.Duration(wait * jitter)
}
