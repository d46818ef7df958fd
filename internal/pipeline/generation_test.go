package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
	"sportscast/internal/providers/veo"
)

func nopLogger() infra.Logger {
	return infra.Logger(zerolog.New(io.Discard))
}

// fakeVeo is a controllable Generator shared by the pipeline tests.
type fakeVeo struct {
	id string

	mu      sync.Mutex
	submits []string

	submitErr   error
	emptyURI    bool
	downloadErr error
}

func (f *fakeVeo) Submit(ctx context.Context, prompt string) (veo.Operation, error) {
	f.mu.Lock()
	f.submits = append(f.submits, prompt)
	f.mu.Unlock()
	if f.submitErr != nil {
		return veo.Operation{}, f.submitErr
	}
	op := veo.Operation{Name: "operations/" + f.id, Done: true}
	if !f.emptyURI {
		op.VideoURI = "https://veo.test/media/" + f.id
	}
	return op, nil
}

func (f *fakeVeo) Poll(ctx context.Context, op veo.Operation) (veo.Operation, error) {
	op.Done = true
	return op, nil
}

func (f *fakeVeo) Download(ctx context.Context, uri, dest string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(dest, []byte("clip"), 0o644)
}

type fakeRefiner struct {
	err error
}

func (f *fakeRefiner) Refine(ctx context.Context, seg domain.Segment) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("refined segment %d", seg.Order), nil
}

func synthSegments(n int) []domain.Segment {
	segs := make([]domain.Segment, n)
	for i := range segs {
		segs[i] = domain.Segment{
			Order:          i + 1,
			Kind:           domain.KindSynthesized,
			TargetDuration: 8,
			Dialogue:       fmt.Sprintf("line %d", i+1),
		}
	}
	return segs
}

func newGenerationForTest(t *testing.T, clients map[string]*fakeVeo, credCount int) *GenerationPipeline {
	t.Helper()
	creds := make([]veo.Credential, credCount)
	for i := range creds {
		creds[i] = veo.Credential{APIKey: fmt.Sprintf("key-%d", i+1)}
	}
	pool, err := veo.NewPool(creds, func(c veo.Credential) veo.Generator {
		if fv, ok := clients[c.APIKey]; ok {
			return fv
		}
		fv := &fakeVeo{id: c.APIKey}
		clients[c.APIKey] = fv
		return fv
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	poller := veo.Poller{Interval: time.Millisecond, MaxPolls: 5}
	p := NewGenerationPipeline(pool, &fakeRefiner{}, poller, 6*time.Second, 2, nopLogger())
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return p
}

func TestGenerationStaggersTaskStarts(t *testing.T) {
	clients := map[string]*fakeVeo{}
	p := newGenerationForTest(t, clients, 1)

	var mu sync.Mutex
	var delays []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return nil
	}

	outcomes := p.Run(context.Background(), synthSegments(3), t.TempDir())
	for _, out := range outcomes {
		if out.Err != nil {
			t.Fatalf("segment %d failed: %v", out.Order, out.Err)
		}
	}

	// The first task starts immediately and never sleeps; tasks two and
	// three wait one and two stagger intervals.
	sort.Slice(delays, func(i, j int) bool { return delays[i] < delays[j] })
	want := []time.Duration{6 * time.Second, 12 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("recorded %d delays %v, want %d", len(delays), delays, len(want))
	}
	for i, d := range delays {
		if d != want[i] {
			t.Fatalf("delay %d = %v, want %v", i, d, want[i])
		}
	}
}

func TestGenerationRotatesCredentials(t *testing.T) {
	clients := map[string]*fakeVeo{}
	p := newGenerationForTest(t, clients, 2)

	outcomes := p.Run(context.Background(), synthSegments(3), t.TempDir())

	counts := map[string]int{}
	for _, out := range outcomes {
		if out.Err != nil {
			t.Fatalf("segment %d failed: %v", out.Order, out.Err)
		}
		counts[out.CredentialID]++
	}
	// Three tasks over two credentials: the rotation wraps, so one
	// credential serves twice and the other once.
	if counts["credential-1"]+counts["credential-2"] != 3 {
		t.Fatalf("credential usage = %v", counts)
	}
	if counts["credential-1"] == 0 || counts["credential-2"] == 0 {
		t.Fatalf("rotation skipped a credential: %v", counts)
	}
}

func TestGenerationContainsSegmentFailures(t *testing.T) {
	failing := &fakeVeo{id: "key-1", submitErr: errors.New("prompt rejected")}
	clients := map[string]*fakeVeo{"key-1": failing}
	p := newGenerationForTest(t, clients, 1)

	outcomes := p.Run(context.Background(), synthSegments(2), t.TempDir())
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want one per segment", len(outcomes))
	}
	for _, out := range outcomes {
		if out.Err == nil {
			t.Fatalf("segment %d should have failed", out.Order)
		}
	}
}

func TestGenerationFailsOnMissingLocator(t *testing.T) {
	clients := map[string]*fakeVeo{"key-1": {id: "key-1", emptyURI: true}}
	p := newGenerationForTest(t, clients, 1)

	outcomes := p.Run(context.Background(), synthSegments(1), t.TempDir())
	if !errors.Is(outcomes[0].Err, domain.ErrNoMediaLocator) {
		t.Fatalf("error = %v, want ErrNoMediaLocator", outcomes[0].Err)
	}
}

func TestGenerationWritesSegmentFiles(t *testing.T) {
	clients := map[string]*fakeVeo{}
	p := newGenerationForTest(t, clients, 1)
	runDir := t.TempDir()

	outcomes := p.Run(context.Background(), synthSegments(2), runDir)
	for _, out := range outcomes {
		if out.Err != nil {
			t.Fatalf("segment %d failed: %v", out.Order, out.Err)
		}
		want := filepath.Join(runDir, fmt.Sprintf("segment_%d.mp4", out.Order))
		if out.MediaPath != want {
			t.Fatalf("media path = %q, want %q", out.MediaPath, want)
		}
		if _, err := os.Stat(out.MediaPath); err != nil {
			t.Fatalf("media file missing: %v", err)
		}
	}
}

func TestGenerationRefinerFailureIsSegmentScoped(t *testing.T) {
	clients := map[string]*fakeVeo{}
	p := newGenerationForTest(t, clients, 1)
	p.refiner = &fakeRefiner{err: errors.New("refine blew up")}

	outcomes := p.Run(context.Background(), synthSegments(1), t.TempDir())
	if outcomes[0].Err == nil {
		t.Fatalf("expected refiner failure to surface in the outcome")
	}
	if len(clients["key-1"].submits) != 0 {
		t.Fatalf("submit should not run after refine failure")
	}
}
