package prompt

import (
	"context"
	"fmt"
	"strings"

	"sportscast/internal/domain"
)

// talentProfiles keeps anchor appearance locked across segments so Veo
// renders a visually consistent broadcast.
const talentProfiles = `TALENT PROFILES (LOCKED):
- Lead Anchor (Marcus Webb): Distinguished man, late 40s, charcoal suit, silver-streaked hair, professional demeanor.
- Analyst (Sarah Chen): Professional woman, early 30s, emerald green blazer, sharp analytical presence.

SETTING:
Realistic sports broadcast studio. Soft-focus background monitors showing highlights.
Documentary-grade lighting. Clean, modern aesthetic.`

// Refiner turns a raw segment descriptor into a generation-ready prompt.
type Refiner interface {
	Refine(ctx context.Context, seg domain.Segment) (string, error)
}

// TextModel is the slice of the Gemini client the refiner needs.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string, temperature float64) (string, error)
}

// GeminiRefiner asks the auxiliary model to expand a segment into a
// cinematic Veo prompt, then prepends the locked talent profiles.
type GeminiRefiner struct {
	model TextModel
}

func NewGeminiRefiner(model TextModel) *GeminiRefiner {
	return &GeminiRefiner{model: model}
}

func (r *GeminiRefiner) Refine(ctx context.Context, seg domain.Segment) (string, error) {
	refined, err := r.model.GenerateText(ctx, buildDirectorPrompt(seg), 0.7)
	if err != nil {
		return "", fmt.Errorf("refine prompt: %w", err)
	}
	return composeScene(refined), nil
}

// StaticRefiner assembles the prompt from the segment fields without a
// model call. Used when no Gemini key is configured and as the test double
// baseline.
type StaticRefiner struct{}

func NewStaticRefiner() *StaticRefiner {
	return &StaticRefiner{}
}

func (s *StaticRefiner) Refine(ctx context.Context, seg domain.Segment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s speaking to camera: %q. Delivery: %s. Camera: %s. Mood: %s. %s",
		value(seg.Speaker, "Marcus Webb"),
		seg.Dialogue,
		value(seg.Delivery, "professional"),
		value(seg.Camera, "Medium shot"),
		value(seg.Mood, "professional"),
		seg.Descriptor,
	)
	return composeScene(b.String()), nil
}

func buildDirectorPrompt(seg domain.Segment) string {
	duration := seg.TargetDuration
	if duration <= 0 || duration > domain.MaxSegmentSeconds {
		duration = domain.MaxSegmentSeconds
	}
	var b strings.Builder
	b.WriteString("Act as a cinematic director for a sports documentary broadcast.\n")
	b.WriteString("Transform this segment into a highly detailed visual prompt for Veo video generation.\n\n")
	b.WriteString("STRICT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. DURATION: Must be exactly %d seconds.\n", duration)
	fmt.Fprintf(&b, "2. SPEAKER: %s\n", value(seg.Speaker, "Marcus Webb"))
	fmt.Fprintf(&b, "3. DIALOGUE: %q\n", seg.Dialogue)
	fmt.Fprintf(&b, "4. DELIVERY: %s\n", value(seg.Delivery, "professional"))
	fmt.Fprintf(&b, "5. MOOD: %s\n", value(seg.Mood, "professional"))
	fmt.Fprintf(&b, "6. CAMERA: %s\n", value(seg.Camera, "Medium shot"))
	fmt.Fprintf(&b, "7. VISUALS: %s\n", seg.Descriptor)
	b.WriteString("8. STYLE: Organic, 35mm film aesthetic, professional studio lighting. NO CGI feel.\n\n")
	b.WriteString("Return a single descriptive paragraph focused on natural performances and facial micro-expressions.\n")
	b.WriteString("The scene should feel like real broadcast television.")
	return b.String()
}

func composeScene(action string) string {
	return talentProfiles + "\n\nSCENE ACTION: " + strings.TrimSpace(action)
}

func value(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

var (
	_ Refiner = (*GeminiRefiner)(nil)
	_ Refiner = (*StaticRefiner)(nil)
)
