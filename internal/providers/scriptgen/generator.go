package scriptgen

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sportscast/internal/domain"
	"sportscast/internal/providers/genai"
)

// Generator turns research context into a finalized, ordered script.
type Generator interface {
	Generate(ctx context.Context, research *domain.ResearchContext, durationSeconds int) (*domain.Script, error)
}

// JSONModel is the slice of the Gemini client the generator needs.
type JSONModel interface {
	GenerateJSON(ctx context.Context, prompt string, temperature float64) (string, error)
}

// GeminiGenerator drafts the broadcast script with the auxiliary model and
// validates the segment list before finalizing it.
type GeminiGenerator struct {
	model    JSONModel
	fallback Generator
}

// NewGeminiGenerator wires an optional fallback used when the model output
// cannot be decoded into a valid script.
func NewGeminiGenerator(model JSONModel, fallback Generator) *GeminiGenerator {
	return &GeminiGenerator{model: model, fallback: fallback}
}

type scriptPayload struct {
	Title     string `json:"title"`
	Storyline string `json:"storyline"`
	Segments  []struct {
		Order           int    `json:"order"`
		Type            string `json:"type"`
		DurationSeconds int    `json:"duration_seconds"`
		VisualPrompt    string `json:"visual_prompt"`
		Speaker         string `json:"speaker"`
		Dialogue        string `json:"dialogue"`
		Delivery        string `json:"delivery"`
		Camera          string `json:"camera"`
		Mood            string `json:"mood"`
		SearchQuery     string `json:"search_query"`
		Context         string `json:"context"`
	} `json:"segments"`
}

func (g *GeminiGenerator) Generate(ctx context.Context, research *domain.ResearchContext, durationSeconds int) (*domain.Script, error) {
	raw, err := g.model.GenerateJSON(ctx, buildScriptPrompt(research, durationSeconds), 0.8)
	if err != nil {
		return g.useFallback(ctx, research, durationSeconds, err)
	}
	parsed, err := genai.ParsePayload[scriptPayload](raw)
	if err != nil {
		return g.useFallback(ctx, research, durationSeconds, err)
	}

	script, err := buildScript(parsed, research, durationSeconds)
	if err != nil {
		return g.useFallback(ctx, research, durationSeconds, err)
	}
	return script, nil
}

func (g *GeminiGenerator) useFallback(ctx context.Context, research *domain.ResearchContext, durationSeconds int, cause error) (*domain.Script, error) {
	if g.fallback == nil {
		return nil, fmt.Errorf("script generation: %w", cause)
	}
	return g.fallback.Generate(ctx, research, durationSeconds)
}

func buildScript(parsed scriptPayload, research *domain.ResearchContext, durationSeconds int) (*domain.Script, error) {
	if len(parsed.Segments) == 0 {
		return nil, fmt.Errorf("model returned no segments")
	}

	script := &domain.Script{
		Title:           parsed.Title,
		Storyline:       parsed.Storyline,
		ResearchSummary: research.StorylineSummary,
		KeyFacts:        research.KeyFacts,
	}
	seen := make(map[int]struct{})
	total := 0
	for _, seg := range parsed.Segments {
		if seg.Order <= 0 {
			return nil, fmt.Errorf("segment with invalid order %d", seg.Order)
		}
		if _, dup := seen[seg.Order]; dup {
			return nil, fmt.Errorf("duplicate segment order %d", seg.Order)
		}
		seen[seg.Order] = struct{}{}

		duration := seg.DurationSeconds
		if duration <= 0 || duration > domain.MaxSegmentSeconds {
			duration = domain.MaxSegmentSeconds
		}
		total += duration

		switch seg.Type {
		case "ai_generated":
			script.Segments = append(script.Segments, domain.Segment{
				Order:          seg.Order,
				Kind:           domain.KindSynthesized,
				TargetDuration: duration,
				Descriptor:     seg.VisualPrompt,
				Speaker:        seg.Speaker,
				Dialogue:       seg.Dialogue,
				Delivery:       seg.Delivery,
				Camera:         seg.Camera,
				Mood:           seg.Mood,
			})
		case "real_clip":
			if strings.TrimSpace(seg.SearchQuery) == "" {
				return nil, fmt.Errorf("real clip segment %d has no search query", seg.Order)
			}
			script.Segments = append(script.Segments, domain.Segment{
				Order:          seg.Order,
				Kind:           domain.KindRealFootage,
				TargetDuration: duration,
				Descriptor:     seg.Context,
				SearchQuery:    seg.SearchQuery,
				Context:        seg.Context,
			})
		default:
			return nil, fmt.Errorf("segment %d has unknown type %q", seg.Order, seg.Type)
		}
	}
	script.TotalDuration = total
	if script.Title == "" {
		script.Title = titleFromPrompt(research.OriginalPrompt)
	}
	return script, nil
}

func buildScriptPrompt(research *domain.ResearchContext, durationSeconds int) string {
	var b strings.Builder
	b.WriteString("You are the head writer for a primetime sports broadcast.\n")
	fmt.Fprintf(&b, "Write a %d second broadcast script for this storyline: %q\n\n", durationSeconds, research.OriginalPrompt)
	fmt.Fprintf(&b, "RESEARCH SUMMARY:\n%s\n\n", research.StorylineSummary)
	if len(research.KeyFacts) > 0 {
		b.WriteString("KEY FACTS:\n")
		for _, fact := range research.KeyFacts {
			fmt.Fprintf(&b, "- %s\n", fact)
		}
		b.WriteString("\n")
	}
	b.WriteString("RULES:\n")
	fmt.Fprintf(&b, "- Every segment is at most %d seconds.\n", domain.MaxSegmentSeconds)
	b.WriteString("- Alternate studio analysis (type \"ai_generated\") with real footage (type \"real_clip\").\n")
	b.WriteString("- Orders start at 1 and are consecutive.\n")
	b.WriteString("- ai_generated segments need visual_prompt, speaker, dialogue, delivery, camera, mood.\n")
	b.WriteString("- real_clip segments need search_query and context.\n\n")
	b.WriteString("Respond strictly as JSON: ")
	b.WriteString(`{"title": string, "storyline": string, "segments": [{"order": int, "type": string, "duration_seconds": int, "visual_prompt": string, "speaker": string, "dialogue": string, "delivery": string, "camera": string, "mood": string, "search_query": string, "context": string}]}`)
	return b.String()
}

// StaticGenerator produces a deterministic script without a model call:
// the target duration sliced into capped units, alternating studio
// segments with real footage. Keeps the pipeline operational in local and
// CI environments.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (s *StaticGenerator) Generate(ctx context.Context, research *domain.ResearchContext, durationSeconds int) (*domain.Script, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if durationSeconds <= 0 {
		durationSeconds = 150
	}

	script := &domain.Script{
		Title:           titleFromPrompt(research.OriginalPrompt),
		Storyline:       research.StorylineSummary,
		ResearchSummary: research.StorylineSummary,
		KeyFacts:        research.KeyFacts,
	}

	remaining := durationSeconds
	order := 1
	for remaining > 0 {
		duration := domain.MaxSegmentSeconds
		if remaining < duration {
			duration = remaining
		}
		// Every third unit cuts to real footage; the rest stay in studio.
		if order%3 == 0 {
			script.Segments = append(script.Segments, domain.Segment{
				Order:          order,
				Kind:           domain.KindRealFootage,
				TargetDuration: duration,
				Descriptor:     fmt.Sprintf("Game footage supporting: %s", research.OriginalPrompt),
				SearchQuery:    fmt.Sprintf("%s highlights", research.OriginalPrompt),
				Context:        "Supporting footage",
			})
		} else {
			dialogue := research.StorylineSummary
			if idx := order/3*2 + order%3 - 1; idx < len(research.KeyFacts) {
				dialogue = research.KeyFacts[idx]
			}
			script.Segments = append(script.Segments, domain.Segment{
				Order:          order,
				Kind:           domain.KindSynthesized,
				TargetDuration: duration,
				Descriptor:     "Broadcast studio, anchors at the desk, highlight monitors in soft focus",
				Speaker:        "Marcus Webb",
				Dialogue:       dialogue,
				Delivery:       "measured, professional",
				Camera:         "Medium shot",
				Mood:           "professional",
			})
		}
		remaining -= duration
		order++
	}
	script.TotalDuration = durationSeconds
	return script, nil
}

func titleFromPrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "Untitled Broadcast"
	}
	return cases.Title(language.AmericanEnglish).String(prompt)
}

var (
	_ Generator = (*GeminiGenerator)(nil)
	_ Generator = (*StaticGenerator)(nil)
)
