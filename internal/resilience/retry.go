package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// Retry configuration constants
const (
	DefaultAttempts   = 3
	DefaultDelay      = 500 * time.Millisecond
	DefaultMaxDelay   = 5 * time.Second
	DefaultMultiplier = 2.0
	DefaultJitter     = 0.2
)

// RetryConfig holds retry settings. A Multiplier of 1 or less keeps the
// delay constant between attempts.
type RetryConfig struct {
	Attempts    int // total calls, including the first
	Delay       time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64 // fraction of the delay, 0 disables
	IsRetryable func(error) bool
}

// DefaultRetryConfig returns exponential backoff for remote calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:    DefaultAttempts,
		Delay:       DefaultDelay,
		MaxDelay:    DefaultMaxDelay,
		Multiplier:  DefaultMultiplier,
		Jitter:      DefaultJitter,
		IsRetryable: IsTransient,
	}
}

// ConstantRetryConfig returns attempts calls spaced by a fixed pause.
func ConstantRetryConfig(attempts int, delay time.Duration, retryable func(error) bool) RetryConfig {
	return RetryConfig{
		Attempts:    attempts,
		Delay:       delay,
		Multiplier:  1,
		IsRetryable: retryable,
	}
}

// IsRetryableGRPC checks if a gRPC status error is worth retrying.
func IsRetryableGRPC(err error) bool {
	s, ok := status.FromError(err)
	if !ok || err == nil {
		return false
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}

// IsTransient reports retryable AppErrors and transient gRPC statuses.
// Context errors are never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return apperrors.IsRetryable(err) || IsRetryableGRPC(err)
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := RetryValue(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// RetryValue is Retry for functions that produce a value. On failure the
// value of the last attempt is still returned alongside its error.
func RetryValue[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg = cfg.withDefaults()
	var (
		last    T
		lastErr error
	)

	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		if last, lastErr = fn(); lastErr == nil {
			return last, nil
		}

		if !cfg.IsRetryable(lastErr) || attempt == cfg.Attempts-1 {
			return last, lastErr
		}

		delay := backoffDelay(cfg, attempt)
		trace.Logger(ctx).Debug("retrying", "attempt", attempt+1, "of", cfg.Attempts, "delay", delay, "error", lastErr)

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(delay):
		}
	}
	return last, lastErr
}

func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.Delay
	if cfg.Multiplier > 1 {
		f := float64(cfg.Delay)
		for i := 0; i < attempt && (cfg.MaxDelay <= 0 || time.Duration(f) < cfg.MaxDelay); i++ {
			f *= cfg.Multiplier
		}
		delay = time.Duration(f)
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter > 0 {
		delay += time.Duration(float64(delay) * cfg.Jitter * (rand.Float64() - 0.5))
	}
	return delay
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.IsRetryable == nil {
		c.IsRetryable = IsTransient
	}
	return c
}
