package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
	"sportscast/internal/providers/prompt"
	"sportscast/internal/providers/veo"
)

// DefaultStaggerInterval spaces out first contact with the generation
// service so a burst of segments does not trip its rate limiter.
const DefaultStaggerInterval = 6 * time.Second

// GenerationPipeline produces media for synthesized segments: refine the
// descriptor, submit a generation job, poll it, then fetch the result with
// the credential that submitted it.
type GenerationPipeline struct {
	pool     *veo.Pool
	refiner  prompt.Refiner
	poller   veo.Poller
	stagger  time.Duration
	attempts int
	logger   infra.Logger

	sleep func(context.Context, time.Duration) error
}

func NewGenerationPipeline(pool *veo.Pool, refiner prompt.Refiner, poller veo.Poller, stagger time.Duration, attempts int, logger infra.Logger) *GenerationPipeline {
	if stagger <= 0 {
		stagger = DefaultStaggerInterval
	}
	return &GenerationPipeline{
		pool:     pool,
		refiner:  refiner,
		poller:   poller,
		stagger:  stagger,
		attempts: attempts,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Run launches one task per segment. Task i delays its first remote call
// by i*stagger; after that all tasks proceed concurrently and
// independently. A task's failure becomes an outcome with Err set and
// never cancels its siblings, so the errgroup always drains cleanly.
func (p *GenerationPipeline) Run(ctx context.Context, segments []domain.Segment, runDir string) []domain.GenerationOutcome {
	outcomes := make([]domain.GenerationOutcome, len(segments))

	var g errgroup.Group
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			outcomes[i] = p.produceSegment(ctx, seg, i, runDir)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (p *GenerationPipeline) produceSegment(ctx context.Context, seg domain.Segment, index int, runDir string) (out domain.GenerationOutcome) {
	out = domain.GenerationOutcome{Order: seg.Order}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("generation panic: %v", r)
		}
	}()

	if delay := time.Duration(index) * p.stagger; delay > 0 {
		if err := p.sleep(ctx, delay); err != nil {
			out.Err = err
			return out
		}
	}

	refined, err := veo.WithRetry(ctx, p.logger, p.attempts, func() (string, error) {
		return p.refiner.Refine(ctx, seg)
	})
	if err != nil {
		out.Err = fmt.Errorf("segment %d: %w", seg.Order, err)
		return out
	}

	client, credentialID := p.pool.Next()
	out.CredentialID = credentialID

	op, err := veo.WithRetry(ctx, p.logger, p.attempts, func() (veo.Operation, error) {
		return client.Submit(ctx, refined)
	})
	if err != nil {
		out.Err = fmt.Errorf("segment %d: submit: %w", seg.Order, err)
		return out
	}

	p.logger.Info().
		Int("segment", seg.Order).
		Str("credential", credentialID).
		Str("operation", op.Name).
		Msg("generation: job submitted")

	op, err = p.poller.Wait(ctx, p.logger, client, op)
	if err != nil {
		out.Err = fmt.Errorf("segment %d: %w", seg.Order, err)
		return out
	}
	if op.VideoURI == "" {
		out.Err = fmt.Errorf("segment %d: %w", seg.Order, domain.ErrNoMediaLocator)
		return out
	}

	// The locator is scoped to the submitting credential, so the download
	// must go through the same client.
	dest := filepath.Join(runDir, fmt.Sprintf("segment_%d.mp4", seg.Order))
	if err := client.Download(ctx, op.VideoURI, dest); err != nil {
		out.Err = fmt.Errorf("segment %d: %w", seg.Order, err)
		return out
	}

	out.MediaPath = dest
	p.logger.Info().
		Int("segment", seg.Order).
		Str("path", dest).
		Msg("generation: segment ready")
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
