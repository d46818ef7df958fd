package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
	"sportscast/internal/media"
	"sportscast/internal/providers/analyze"
	"sportscast/internal/providers/search"
)

// RetrievalPipeline produces media for real-footage segments: search for
// candidates, download the top hit, locate the relevant window, trim.
type RetrievalPipeline struct {
	search     search.Provider
	downloader search.Downloader
	analyzer   analyze.Analyzer
	encoder    media.Encoder
	logger     infra.Logger
}

// NewRetrievalPipeline wires the retrieval stages. The analyzer may be
// nil; the pipeline then trims the leading window of each clip.
func NewRetrievalPipeline(provider search.Provider, downloader search.Downloader, analyzer analyze.Analyzer, encoder media.Encoder, logger infra.Logger) *RetrievalPipeline {
	return &RetrievalPipeline{
		search:     provider,
		downloader: downloader,
		analyzer:   analyzer,
		encoder:    encoder,
		logger:     logger,
	}
}

// Run retrieves footage for every segment concurrently. Retrieval tasks
// have no stagger; the external index tolerates bursts. Failures are
// recorded per segment and never cancel siblings.
func (p *RetrievalPipeline) Run(ctx context.Context, segments []domain.Segment, runDir string) []domain.RetrievalOutcome {
	outcomes := make([]domain.RetrievalOutcome, len(segments))

	var g errgroup.Group
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			outcomes[i] = p.retrieveSegment(ctx, seg, runDir)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (p *RetrievalPipeline) retrieveSegment(ctx context.Context, seg domain.Segment, runDir string) (out domain.RetrievalOutcome) {
	out = domain.RetrievalOutcome{Order: seg.Order}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("retrieval panic: %v", r)
		}
	}()

	candidates, err := p.search.Search(ctx, seg.SearchQuery)
	if err != nil {
		out.Err = fmt.Errorf("segment %d: %w", seg.Order, err)
		return out
	}
	if len(candidates) == 0 {
		out.Err = fmt.Errorf("segment %d: %w for query %q", seg.Order, domain.ErrNoCandidates, seg.SearchQuery)
		return out
	}
	out.SourceURL = candidates[0]

	raw := filepath.Join(runDir, fmt.Sprintf("footage_%d.mp4", seg.Order))
	if err := p.downloader.Download(ctx, out.SourceURL, raw); err != nil {
		out.Err = fmt.Errorf("segment %d: download footage: %w", seg.Order, err)
		return out
	}

	window := analyze.LeadingWindow(seg.TargetDuration)
	if p.analyzer != nil {
		located, err := p.analyzer.Locate(ctx, raw, seg.TargetDuration, seg.Descriptor)
		if err != nil {
			out.Err = fmt.Errorf("segment %d: %w", seg.Order, err)
			return out
		}
		window = located
	}
	out.Window = window

	clip := filepath.Join(runDir, fmt.Sprintf("clip_%d.mp4", seg.Order))
	if err := p.encoder.Trim(ctx, raw, clip, *window); err != nil {
		out.Err = fmt.Errorf("segment %d: trim footage: %w", seg.Order, err)
		return out
	}

	out.MediaPath = clip
	p.logger.Info().
		Int("segment", seg.Order).
		Str("source", out.SourceURL).
		Str("path", clip).
		Msg("retrieval: segment ready")
	return out
}
