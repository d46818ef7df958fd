package veo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
)

// DefaultRetryAttempts caps a single remote call, not the overall poll loop.
const DefaultRetryAttempts = 3

// IsTransient reports whether err is an overload or rate-limit signal that
// is worth retrying. Anything else is treated as permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == 429 || apiErr.Status == 503 {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "status 503")
}

// WithRetry runs fn up to attempts times, backing off exponentially with
// sub-second jitter between transient failures. Non-transient errors
// propagate after the first attempt. An exhausted transient error is
// reclassified as permanent via domain.ErrRetryExhausted.
func WithRetry[T any](ctx context.Context, logger infra.Logger, attempts int, fn func() (T, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return zero, err
		}
		if i == attempts-1 {
			break
		}
		delay := time.Duration(1<<uint(i))*time.Second + time.Duration(rand.Int63n(int64(time.Second)))
		logger.Warn().
			Err(err).
			Dur("delay", delay).
			Int("attempt", i+1).
			Int("max_attempts", attempts).
			Msg("veo: model busy, backing off")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", domain.ErrRetryExhausted, attempts, lastErr)
}
