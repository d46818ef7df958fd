package research

import (
	"context"
	"fmt"
	"strings"

	"sportscast/internal/domain"
	"sportscast/internal/providers/genai"
)

// Researcher gathers storyline context for script generation.
type Researcher interface {
	// ExpandQueries fans a raw prompt out into concrete research angles.
	ExpandQueries(ctx context.Context, prompt string) ([]string, error)
	// Research builds a structured context from the prompt and its angles.
	Research(ctx context.Context, prompt string, queries []string) (*domain.ResearchContext, error)
}

// JSONModel is the slice of the Gemini client the researcher needs.
type JSONModel interface {
	GenerateJSON(ctx context.Context, prompt string, temperature float64) (string, error)
}

// GeminiResearcher uses the search-grounded auxiliary model to collect
// facts, figures and timeline for a storyline.
type GeminiResearcher struct {
	model JSONModel
}

func NewGeminiResearcher(model JSONModel) *GeminiResearcher {
	return &GeminiResearcher{model: model}
}

type fanoutPayload struct {
	Queries []string `json:"queries"`
}

func (r *GeminiResearcher) ExpandQueries(ctx context.Context, prompt string) ([]string, error) {
	raw, err := r.model.GenerateJSON(ctx, fmt.Sprintf(
		`Expand this sports storyline into 3-5 specific research search queries covering recent news, statistics, key people and controversy: %q. Respond strictly as JSON: {"queries": [string]}.`,
		prompt,
	), 0.7)
	if err != nil {
		return nil, fmt.Errorf("expand queries: %w", err)
	}
	parsed, err := genai.ParsePayload[fanoutPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("parse query fanout: %w", err)
	}
	var queries []string
	for _, q := range parsed.Queries {
		if strings.TrimSpace(q) != "" {
			queries = append(queries, strings.TrimSpace(q))
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("query fanout returned nothing")
	}
	return queries, nil
}

type researchPayload struct {
	StorylineSummary  string   `json:"storyline_summary"`
	KeyFacts          []string `json:"key_facts"`
	KeyFigures        []string `json:"key_figures"`
	Timeline          []string `json:"timeline"`
	ControversyPoints []string `json:"controversy_points"`
	EmotionalAngles   []string `json:"emotional_angles"`
	Sources           []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Source  string `json:"source"`
		URL     string `json:"url"`
	} `json:"sources"`
}

func (r *GeminiResearcher) Research(ctx context.Context, prompt string, queries []string) (*domain.ResearchContext, error) {
	raw, err := r.model.GenerateJSON(ctx, buildResearchPrompt(prompt, queries), 0.7)
	if err != nil {
		return nil, fmt.Errorf("research storyline: %w", err)
	}
	parsed, err := genai.ParsePayload[researchPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("parse research response: %w", err)
	}
	if parsed.StorylineSummary == "" && len(parsed.KeyFacts) == 0 {
		return nil, fmt.Errorf("research returned no usable context")
	}

	rc := &domain.ResearchContext{
		OriginalPrompt:    prompt,
		StorylineSummary:  parsed.StorylineSummary,
		KeyFacts:          parsed.KeyFacts,
		KeyFigures:        parsed.KeyFigures,
		Timeline:          parsed.Timeline,
		ControversyPoints: parsed.ControversyPoints,
		EmotionalAngles:   parsed.EmotionalAngles,
	}
	for _, src := range parsed.Sources {
		rc.Sources = append(rc.Sources, domain.ResearchSource{
			Title:   src.Title,
			Snippet: src.Snippet,
			Source:  src.Source,
			URL:     src.URL,
		})
	}
	return rc, nil
}

func buildResearchPrompt(prompt string, queries []string) string {
	var b strings.Builder
	b.WriteString("You are a sports researcher gathering information for a primetime broadcast script.\n\n")
	fmt.Fprintf(&b, "Research this sports storyline thoroughly: %q\n", prompt)
	if len(queries) > 0 {
		b.WriteString("Cover these angles:\n")
		for _, q := range queries {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	b.WriteString("\nFind recent developments, specific statistics, key people, a timeline of events, ")
	b.WriteString("controversial or debatable aspects, and emotional human-interest angles.\n\n")
	b.WriteString("Return your findings as JSON with this EXACT structure:\n")
	b.WriteString(`{"storyline_summary": string, "key_facts": [string], "key_figures": [string], "timeline": [string], "controversy_points": [string], "emotional_angles": [string], "sources": [{"title": string, "snippet": string, "source": string, "url": string}]}`)
	b.WriteString("\n\nUse specific numbers, dates, names and quotes. Return ONLY the JSON, no other text.")
	return b.String()
}

var _ Researcher = (*GeminiResearcher)(nil)
