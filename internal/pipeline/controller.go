package pipeline

import (
	"context"
	"fmt"
	"strings"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
	"sportscast/internal/providers/research"
	"sportscast/internal/providers/scriptgen"
	"sportscast/internal/storage"
)

// Controller drives one run end to end: fan the prompt out into research
// angles, gather context, draft the script, produce media for every
// segment, assemble the final video. Stages run once; a stage failure
// terminates the run in that stage's failed phase.
type Controller struct {
	researcher  research.Researcher
	scriptgen   scriptgen.Generator
	coordinator *Coordinator
	assembler   *Assembler
	store       *storage.MediaStore
	logger      infra.Logger
}

func NewController(researcher research.Researcher, generator scriptgen.Generator, coordinator *Coordinator, assembler *Assembler, store *storage.MediaStore, logger infra.Logger) *Controller {
	return &Controller{
		researcher:  researcher,
		scriptgen:   generator,
		coordinator: coordinator,
		assembler:   assembler,
		store:       store,
		logger:      logger,
	}
}

// Run executes the full pipeline for one prompt. The returned Result
// always carries the terminal phase; Err is set for failed phases.
func (c *Controller) Run(ctx context.Context, prompt string, durationSeconds int) Result {
	st := &State{
		Prompt:          strings.TrimSpace(prompt),
		DurationSeconds: durationSeconds,
		Phase:           PhaseStarting,
	}

	if st.Prompt == "" {
		st.Err = domain.ErrInvalidPrompt
		return c.finish(st)
	}

	c.fanout(ctx, st)
	if c.research(ctx, st); st.Err != nil {
		return c.finish(st)
	}
	if c.script(ctx, st); st.Err != nil {
		return c.finish(st)
	}
	if c.produce(ctx, st); st.Err != nil {
		return c.finish(st)
	}
	c.assemble(ctx, st)
	return c.finish(st)
}

// fanout expands the prompt into research angles. It never fails the run:
// when expansion errors the raw prompt is the single angle.
func (c *Controller) fanout(ctx context.Context, st *State) {
	queries, err := c.researcher.ExpandQueries(ctx, st.Prompt)
	if err != nil {
		c.logger.Warn().Err(err).Msg("pipeline: query fanout failed, using raw prompt")
		queries = []string{st.Prompt}
	}
	st.Queries = queries
	st.Phase = PhaseFanoutDone
	c.logger.Info().Int("queries", len(queries)).Msg("pipeline: fanout done")
}

func (c *Controller) research(ctx context.Context, st *State) {
	rc, err := c.researcher.Research(ctx, st.Prompt, st.Queries)
	if err != nil {
		st.Phase = PhaseResearchFailed
		st.Err = fmt.Errorf("research: %w", err)
		return
	}
	st.Research = rc
	st.Phase = PhaseResearchDone
	c.logger.Info().Int("facts", len(rc.KeyFacts)).Msg("pipeline: research done")
}

func (c *Controller) script(ctx context.Context, st *State) {
	script, err := c.scriptgen.Generate(ctx, st.Research, st.DurationSeconds)
	if err != nil {
		st.Phase = PhaseScriptFailed
		st.Err = fmt.Errorf("script: %w", err)
		return
	}
	if script == nil || len(script.Segments) == 0 {
		st.Phase = PhaseScriptFailed
		st.Err = domain.ErrNoScript
		return
	}
	st.Script = script
	st.Phase = PhaseScriptDone
	c.logger.Info().
		Str("title", script.Title).
		Int("segments", len(script.Segments)).
		Msg("pipeline: script done")
}

// produce runs both production pipelines. Segment failures are contained
// in st.Failures; only a workspace setup failure terminates here.
func (c *Controller) produce(ctx context.Context, st *State) {
	runDir, err := c.store.NewRunDir()
	if err != nil {
		st.Phase = PhaseScriptFailed
		st.Err = fmt.Errorf("prepare media workspace: %w", err)
		return
	}

	st.Records, st.Failures = c.coordinator.Produce(ctx, st.Script, runDir)
	st.Phase = PhaseMediaProduced
}

func (c *Controller) assemble(ctx context.Context, st *State) {
	finalPath, err := c.assembler.Assemble(ctx, st.Script, st.Records)
	if err != nil {
		st.Phase = PhaseAssemblyFailed
		st.Err = err
		return
	}
	st.FinalPath = finalPath
	st.Phase = PhaseAssemblyDone
}

func (c *Controller) finish(st *State) Result {
	res := Result{
		Phase:     st.Phase,
		Script:    st.Script,
		FinalPath: st.FinalPath,
		Failures:  st.Failures,
		Err:       st.Err,
	}
	evt := c.logger.Info()
	if st.Err != nil {
		evt = c.logger.Error().Err(st.Err)
	}
	evt.Str("phase", string(st.Phase)).Msg("pipeline: run finished")
	return res
}
