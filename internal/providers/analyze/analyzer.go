package analyze

import (
	"context"
	"fmt"
	"path/filepath"

	"sportscast/internal/domain"
	"sportscast/internal/providers/genai"
)

// Analyzer locates the window within downloaded footage that best matches a
// segment's description. Best effort: a shape or parse failure is a
// segment-scoped error, never fatal for the run.
type Analyzer interface {
	Locate(ctx context.Context, file string, targetDuration int, description string) (*domain.TrimWindow, error)
}

// JSONModel is the slice of the Gemini client the analyzer needs.
type JSONModel interface {
	GenerateJSON(ctx context.Context, prompt string, temperature float64) (string, error)
}

// GeminiAnalyzer asks the auxiliary model for a start/end window given the
// clip and the segment description.
type GeminiAnalyzer struct {
	model JSONModel
}

func NewGeminiAnalyzer(model JSONModel) *GeminiAnalyzer {
	return &GeminiAnalyzer{model: model}
}

type windowPayload struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (a *GeminiAnalyzer) Locate(ctx context.Context, file string, targetDuration int, description string) (*domain.TrimWindow, error) {
	prompt := fmt.Sprintf(
		`You are editing a sports broadcast. The file %q contains raw footage. `+
			`Pick the %d-second window that best matches this description: %q. `+
			`Respond strictly as JSON: {"start": <seconds>, "end": <seconds>}.`,
		filepath.Base(file), targetDuration, description,
	)

	raw, err := a.model.GenerateJSON(ctx, prompt, 0.2)
	if err != nil {
		return nil, fmt.Errorf("analyze footage: %w", err)
	}
	parsed, err := genai.ParsePayload[windowPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("parse analysis window: %w", err)
	}
	if parsed.End <= parsed.Start || parsed.Start < 0 {
		return nil, fmt.Errorf("analysis returned invalid window [%f, %f]", parsed.Start, parsed.End)
	}
	return &domain.TrimWindow{Start: parsed.Start, End: parsed.End}, nil
}

// LeadingWindow returns the fallback window used when no analyzer is
// configured: the first targetDuration seconds of the clip.
func LeadingWindow(targetDuration int) *domain.TrimWindow {
	if targetDuration <= 0 {
		targetDuration = domain.MaxSegmentSeconds
	}
	return &domain.TrimWindow{Start: 0, End: float64(targetDuration)}
}

var _ Analyzer = (*GeminiAnalyzer)(nil)
