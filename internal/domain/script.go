package domain

// SegmentKind distinguishes how a segment's media is produced.
type SegmentKind string

const (
	// KindSynthesized segments are generated by the Veo video service.
	KindSynthesized SegmentKind = "synthesized"
	// KindRealFootage segments are retrieved from a video search index.
	KindRealFootage SegmentKind = "real_footage"
)

// MaxSegmentSeconds is the per-segment duration cap imposed by the
// generation service (one Veo unit).
const MaxSegmentSeconds = 8

// Segment is one ordered unit of a finalized script. Orders are unique,
// ascending and caller-assigned; segments are immutable once the script
// is finalized.
type Segment struct {
	Order          int         `json:"order"`
	Kind           SegmentKind `json:"kind"`
	TargetDuration int         `json:"duration_seconds"`

	// Synthesized segments: broadcast direction for prompt refinement.
	Descriptor string `json:"visual_prompt,omitempty"`
	Speaker    string `json:"speaker,omitempty"`
	Dialogue   string `json:"dialogue,omitempty"`
	Delivery   string `json:"delivery,omitempty"`
	Camera     string `json:"camera,omitempty"`
	Mood       string `json:"mood,omitempty"`

	// Real-footage segments: query against the video search index.
	SearchQuery string `json:"search_query,omitempty"`
	Context     string `json:"context,omitempty"`
}

// Script is the finalized, ordered segment list handed to media production.
type Script struct {
	Title           string    `json:"title"`
	Storyline       string    `json:"storyline"`
	TotalDuration   int       `json:"total_duration_seconds"`
	Segments        []Segment `json:"segments"`
	ResearchSummary string    `json:"research_summary,omitempty"`
	KeyFacts        []string  `json:"key_facts,omitempty"`
}

// SynthesizedSegments returns the segments produced via generation,
// preserving script order.
func (s *Script) SynthesizedSegments() []Segment {
	return s.filter(KindSynthesized)
}

// RealFootageSegments returns the segments produced via retrieval,
// preserving script order.
func (s *Script) RealFootageSegments() []Segment {
	return s.filter(KindRealFootage)
}

func (s *Script) filter(kind SegmentKind) []Segment {
	var out []Segment
	for _, seg := range s.Segments {
		if seg.Kind == kind {
			out = append(out, seg)
		}
	}
	return out
}

// ResearchSource is a single citation gathered during research.
type ResearchSource struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
}

// ResearchContext is the research stage output consumed by script generation.
type ResearchContext struct {
	OriginalPrompt    string           `json:"original_prompt"`
	StorylineSummary  string           `json:"storyline_summary"`
	KeyFacts          []string         `json:"key_facts"`
	KeyFigures        []string         `json:"key_figures"`
	Timeline          []string         `json:"timeline"`
	ControversyPoints []string         `json:"controversy_points"`
	EmotionalAngles   []string         `json:"emotional_angles"`
	Sources           []ResearchSource `json:"sources"`
}
