package pipeline

import (
	"context"
	"errors"
	"testing"

	"sportscast/internal/domain"
	"sportscast/internal/storage"
)

type fakeResearcher struct {
	expandErr   error
	researchErr error

	gotQueries []string
}

func (f *fakeResearcher) ExpandQueries(ctx context.Context, prompt string) ([]string, error) {
	if f.expandErr != nil {
		return nil, f.expandErr
	}
	return []string{prompt + " news", prompt + " stats"}, nil
}

func (f *fakeResearcher) Research(ctx context.Context, prompt string, queries []string) (*domain.ResearchContext, error) {
	f.gotQueries = queries
	if f.researchErr != nil {
		return nil, f.researchErr
	}
	return &domain.ResearchContext{
		OriginalPrompt:   prompt,
		StorylineSummary: "summary of " + prompt,
		KeyFacts:         []string{"fact one", "fact two"},
	}, nil
}

type fakeScriptGen struct {
	script *domain.Script
	err    error
}

func (f *fakeScriptGen) Generate(ctx context.Context, research *domain.ResearchContext, durationSeconds int) (*domain.Script, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.script, nil
}

func newControllerForTest(t *testing.T, researcher *fakeResearcher, gen *fakeScriptGen, provider *fakeSearch) *Controller {
	t.Helper()
	store, err := storage.NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("new media store: %v", err)
	}
	enc := &fakeEncoder{}
	coordinator := newCoordinatorForTest(t, map[string]*fakeVeo{}, enc, provider)
	assembler := NewAssembler(enc, store, nopLogger())
	return NewController(researcher, gen, coordinator, assembler, store, nopLogger())
}

func TestControllerFullRun(t *testing.T) {
	provider := &fakeSearch{results: map[string][]string{"query 2": {"https://videos.test/watch?v=2"}}}
	c := newControllerForTest(t, &fakeResearcher{}, &fakeScriptGen{script: mixedScript()}, provider)

	res := c.Run(context.Background(), "trade deadline fallout", 150)
	if !res.Succeeded() {
		t.Fatalf("run failed in phase %s: %v", res.Phase, res.Err)
	}
	if res.Phase != PhaseAssemblyDone {
		t.Fatalf("phase = %s, want %s", res.Phase, PhaseAssemblyDone)
	}
	if res.FinalPath == "" || res.Script == nil {
		t.Fatalf("result incomplete: %+v", res)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("failures = %v, want none", res.Failures)
	}
}

func TestControllerRejectsEmptyPrompt(t *testing.T) {
	c := newControllerForTest(t, &fakeResearcher{}, &fakeScriptGen{script: mixedScript()}, &fakeSearch{})

	res := c.Run(context.Background(), "   ", 150)
	if !errors.Is(res.Err, domain.ErrInvalidPrompt) {
		t.Fatalf("error = %v, want ErrInvalidPrompt", res.Err)
	}
	if res.Phase != PhaseStarting {
		t.Fatalf("phase = %s, want %s", res.Phase, PhaseStarting)
	}
}

func TestControllerFanoutFailureFallsBackToPrompt(t *testing.T) {
	researcher := &fakeResearcher{expandErr: errors.New("fanout unavailable")}
	provider := &fakeSearch{results: map[string][]string{"query 2": {"https://videos.test/watch?v=2"}}}
	c := newControllerForTest(t, researcher, &fakeScriptGen{script: mixedScript()}, provider)

	res := c.Run(context.Background(), "trade deadline fallout", 150)
	if !res.Succeeded() {
		t.Fatalf("fanout failure must not fail the run: phase %s, err %v", res.Phase, res.Err)
	}
	if len(researcher.gotQueries) != 1 || researcher.gotQueries[0] != "trade deadline fallout" {
		t.Fatalf("research queries = %v, want the raw prompt", researcher.gotQueries)
	}
}

func TestControllerResearchFailureIsTerminal(t *testing.T) {
	researcher := &fakeResearcher{researchErr: errors.New("research timed out")}
	c := newControllerForTest(t, researcher, &fakeScriptGen{script: mixedScript()}, &fakeSearch{})

	res := c.Run(context.Background(), "trade deadline fallout", 150)
	if res.Phase != PhaseResearchFailed {
		t.Fatalf("phase = %s, want %s", res.Phase, PhaseResearchFailed)
	}
	if res.Err == nil {
		t.Fatalf("expected terminal error")
	}
}

func TestControllerScriptFailureIsTerminal(t *testing.T) {
	c := newControllerForTest(t, &fakeResearcher{}, &fakeScriptGen{err: errors.New("model returned garbage")}, &fakeSearch{})

	res := c.Run(context.Background(), "trade deadline fallout", 150)
	if res.Phase != PhaseScriptFailed {
		t.Fatalf("phase = %s, want %s", res.Phase, PhaseScriptFailed)
	}
}

func TestControllerEmptyScriptIsTerminal(t *testing.T) {
	c := newControllerForTest(t, &fakeResearcher{}, &fakeScriptGen{script: &domain.Script{}}, &fakeSearch{})

	res := c.Run(context.Background(), "trade deadline fallout", 150)
	if res.Phase != PhaseScriptFailed {
		t.Fatalf("phase = %s, want %s", res.Phase, PhaseScriptFailed)
	}
	if !errors.Is(res.Err, domain.ErrNoScript) {
		t.Fatalf("error = %v, want ErrNoScript", res.Err)
	}
}

func TestControllerPartialProductionFailsAssembly(t *testing.T) {
	// Real footage segment finds no candidates: production still reports
	// the surviving segments, assembly refuses the incomplete set.
	provider := &fakeSearch{results: map[string][]string{}}
	c := newControllerForTest(t, &fakeResearcher{}, &fakeScriptGen{script: mixedScript()}, provider)

	res := c.Run(context.Background(), "trade deadline fallout", 150)
	if res.Phase != PhaseAssemblyFailed {
		t.Fatalf("phase = %s, want %s", res.Phase, PhaseAssemblyFailed)
	}
	if len(res.Failures) != 1 || res.Failures[0].Order != 2 {
		t.Fatalf("failures = %v, want segment 2", res.Failures)
	}
	var missing *domain.MissingSegmentsError
	if !errors.As(res.Err, &missing) {
		t.Fatalf("error = %v, want MissingSegmentsError", res.Err)
	}
	if len(missing.Orders) != 1 || missing.Orders[0] != 2 {
		t.Fatalf("missing orders = %v, want [2]", missing.Orders)
	}
	if res.FinalPath != "" {
		t.Fatalf("no final path should be reported on assembly failure")
	}
}
