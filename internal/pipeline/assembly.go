package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
	"sportscast/internal/media"
	"sportscast/internal/storage"
)

// Assembler joins produced segment clips into the final video. Assembly is
// all or nothing: a single missing segment fails the whole step and no
// partial output is written.
type Assembler struct {
	encoder media.Encoder
	store   *storage.MediaStore
	logger  infra.Logger
}

func NewAssembler(encoder media.Encoder, store *storage.MediaStore, logger infra.Logger) *Assembler {
	return &Assembler{encoder: encoder, store: store, logger: logger}
}

// Assemble verifies that every script segment has a record backed by a
// readable file, then concatenates the clips in segment order. On a
// completeness failure it returns MissingSegmentsError enumerating every
// absent order.
func (a *Assembler) Assemble(ctx context.Context, script *domain.Script, records []domain.MediaRecord) (string, error) {
	if script == nil || len(script.Segments) == 0 {
		return "", domain.ErrNoScript
	}

	byOrder := make(map[int]domain.MediaRecord, len(records))
	for _, rec := range records {
		byOrder[rec.Order] = rec
	}

	var missing []int
	for _, seg := range script.Segments {
		rec, ok := byOrder[seg.Order]
		if !ok {
			missing = append(missing, seg.Order)
			continue
		}
		if _, err := os.Stat(rec.Path); err != nil {
			missing = append(missing, seg.Order)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return "", &domain.MissingSegmentsError{Orders: missing}
	}

	ordered := make([]domain.MediaRecord, len(records))
	copy(ordered, records)
	domain.SortRecords(ordered)

	inputs := make([]string, len(ordered))
	for i, rec := range ordered {
		inputs[i] = rec.Path
	}

	dest := a.store.FinalPath()
	if err := a.encoder.Concat(ctx, inputs, dest); err != nil {
		return "", fmt.Errorf("assemble video: %w", err)
	}

	a.logger.Info().
		Int("segments", len(inputs)).
		Str("path", dest).
		Msg("assembly: final video written")
	return dest, nil
}
