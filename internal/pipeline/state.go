package pipeline

import "sportscast/internal/domain"

// Phase marks how far a run has progressed. Exactly one stage owns the
// state at a time; the phase is its completion marker.
type Phase string

const (
	PhaseStarting       Phase = "starting"
	PhaseFanoutDone     Phase = "fanout_done"
	PhaseResearchDone   Phase = "research_done"
	PhaseResearchFailed Phase = "research_failed"
	PhaseScriptDone     Phase = "script_done"
	PhaseScriptFailed   Phase = "script_failed"
	PhaseMediaProduced  Phase = "media_produced"
	PhaseAssemblyDone   Phase = "assembly_done"
	PhaseAssemblyFailed Phase = "assembly_failed"
)

// State carries stage outputs through one run. It is mutated only by the
// active stage and discarded when the run terminates.
type State struct {
	Prompt          string
	DurationSeconds int

	Phase Phase
	Err   error

	Queries  []string
	Research *domain.ResearchContext
	Script   *domain.Script
	Records  []domain.MediaRecord
	Failures []domain.SegmentFailure

	FinalPath string
}

// Result is the caller-facing summary of a terminated run.
type Result struct {
	Phase     Phase
	Script    *domain.Script
	FinalPath string
	Failures  []domain.SegmentFailure
	Err       error
}

// Succeeded reports whether the run produced a final video.
func (r Result) Succeeded() bool {
	return r.Phase == PhaseAssemblyDone && r.FinalPath != ""
}
