package domain

import (
	"fmt"
	"sort"
	"strings"
)

// TrimWindow is a half-open [Start, End) window in seconds within a
// downloaded clip.
type TrimWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// GenerationOutcome records the result of one synthesized-segment task.
// Exactly one outcome is produced per segment; Err is set instead of
// MediaPath when the task failed.
type GenerationOutcome struct {
	Order        int
	MediaPath    string
	CredentialID string
	Err          error
}

// RetrievalOutcome records the result of one real-footage segment task.
type RetrievalOutcome struct {
	Order     int
	MediaPath string
	SourceURL string
	Window    *TrimWindow
	Err       error
}

// MediaRecord is the unit consumed by assembly. Records exist only for
// segments whose production succeeded.
type MediaRecord struct {
	Order int
	Path  string
	Kind  SegmentKind
}

// SegmentFailure tracks a segment that produced no media, for visibility
// alongside the best-effort production result.
type SegmentFailure struct {
	Order int
	Err   error
}

// MissingSegmentsError is returned by assembly when the manifest does not
// cover every script segment. It enumerates every missing order so the
// caller can decide which segments to retry.
type MissingSegmentsError struct {
	Orders []int
}

func (e *MissingSegmentsError) Error() string {
	parts := make([]string, len(e.Orders))
	for i, order := range e.Orders {
		parts[i] = fmt.Sprintf("%d", order)
	}
	return "assembly failed: missing segments [" + strings.Join(parts, ", ") + "]"
}

// SortRecords orders media records ascending by segment order.
func SortRecords(records []MediaRecord) {
	sort.Slice(records, func(i, j int) bool { return records[i].Order < records[j].Order })
}
