package pipeline

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
)

// Coordinator fans the script out to both production pipelines and merges
// their outcomes. Production is best effort: it always runs to completion
// and reports every segment either as a media record or a failure.
type Coordinator struct {
	generation *GenerationPipeline
	retrieval  *RetrievalPipeline
	logger     infra.Logger
}

func NewCoordinator(generation *GenerationPipeline, retrieval *RetrievalPipeline, logger infra.Logger) *Coordinator {
	return &Coordinator{generation: generation, retrieval: retrieval, logger: logger}
}

// Produce runs synthesized generation and real-footage retrieval
// concurrently and returns the merged records plus the per-segment
// failures. Both slices are sorted by segment order.
func (c *Coordinator) Produce(ctx context.Context, script *domain.Script, runDir string) ([]domain.MediaRecord, []domain.SegmentFailure) {
	var (
		genOutcomes []domain.GenerationOutcome
		retOutcomes []domain.RetrievalOutcome
	)

	var g errgroup.Group
	g.Go(func() error {
		genOutcomes = c.generation.Run(ctx, script.SynthesizedSegments(), runDir)
		return nil
	})
	g.Go(func() error {
		retOutcomes = c.retrieval.Run(ctx, script.RealFootageSegments(), runDir)
		return nil
	})
	_ = g.Wait()

	var records []domain.MediaRecord
	var failures []domain.SegmentFailure
	for _, out := range genOutcomes {
		if out.Err != nil {
			failures = append(failures, domain.SegmentFailure{Order: out.Order, Err: out.Err})
			continue
		}
		records = append(records, domain.MediaRecord{Order: out.Order, Path: out.MediaPath, Kind: domain.KindSynthesized})
	}
	for _, out := range retOutcomes {
		if out.Err != nil {
			failures = append(failures, domain.SegmentFailure{Order: out.Order, Err: out.Err})
			continue
		}
		records = append(records, domain.MediaRecord{Order: out.Order, Path: out.MediaPath, Kind: domain.KindRealFootage})
	}

	domain.SortRecords(records)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Order < failures[j].Order })

	for _, f := range failures {
		c.logger.Warn().Int("segment", f.Order).Err(f.Err).Msg("production: segment failed")
	}
	c.logger.Info().
		Int("produced", len(records)).
		Int("failed", len(failures)).
		Msg("production: complete")

	return records, failures
}
