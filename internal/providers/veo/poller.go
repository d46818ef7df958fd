package veo

import (
	"context"
	"fmt"
	"time"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
)

const (
	// DefaultPollInterval matches the service's typical 45-60s render time.
	DefaultPollInterval = 8 * time.Second
	// DefaultMaxPolls bounds a single operation at six minutes of waiting.
	DefaultMaxPolls = 45
)

// Poller waits for a long-running operation to complete. Each poll is a
// remote call routed through the retry wrapper; the poll count has a hard
// ceiling so a wedged operation surfaces as a permanent error instead of
// spinning forever.
type Poller struct {
	Interval time.Duration
	MaxPolls int
	Attempts int
}

// Wait polls op on the given client until it reports done, the poll budget
// is exhausted, or the context is cancelled.
func (p Poller) Wait(ctx context.Context, logger infra.Logger, client Generator, op Operation) (Operation, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxPolls := p.MaxPolls
	if maxPolls <= 0 {
		maxPolls = DefaultMaxPolls
	}

	for polls := 0; !op.Done; polls++ {
		if polls >= maxPolls {
			return Operation{}, fmt.Errorf("%w: %s after %d polls", domain.ErrPollDeadline, op.Name, polls)
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return Operation{}, ctx.Err()
		}

		next, err := WithRetry(ctx, logger, p.Attempts, func() (Operation, error) {
			return client.Poll(ctx, op)
		})
		if err != nil {
			return Operation{}, err
		}
		op = next

		logger.Debug().
			Str("operation", op.Name).
			Bool("done", op.Done).
			Int("polls", polls+1).
			Msg("veo: polled operation")
	}
	return op, nil
}
