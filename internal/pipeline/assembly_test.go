package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sportscast/internal/domain"
	"sportscast/internal/storage"
)

func newAssemblerForTest(t *testing.T, enc *fakeEncoder) (*Assembler, *storage.MediaStore) {
	t.Helper()
	store, err := storage.NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("new media store: %v", err)
	}
	return NewAssembler(enc, store, nopLogger()), store
}

func writeClip(t *testing.T, dir string, order int) domain.MediaRecord {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("clip_%d.mp4", order))
	if err := os.WriteFile(path, []byte("clip"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return domain.MediaRecord{Order: order, Path: path, Kind: domain.KindSynthesized}
}

func TestAssembleConcatenatesInOrder(t *testing.T) {
	enc := &fakeEncoder{}
	asm, store := newAssemblerForTest(t, enc)
	dir := t.TempDir()

	script := mixedScript()
	// Records arrive unordered; assembly must sort by segment order.
	records := []domain.MediaRecord{
		writeClip(t, dir, 3),
		writeClip(t, dir, 1),
		writeClip(t, dir, 2),
	}

	finalPath, err := asm.Assemble(context.Background(), script, records)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.HasPrefix(finalPath, store.BasePath()) {
		t.Fatalf("final path %q outside store %q", finalPath, store.BasePath())
	}
	if len(enc.concats) != 1 {
		t.Fatalf("concats = %d, want 1", len(enc.concats))
	}
	inputs := enc.concats[0]
	for i, in := range inputs {
		want := fmt.Sprintf("clip_%d.mp4", i+1)
		if filepath.Base(in) != want {
			t.Fatalf("input %d = %q, want %q", i, in, want)
		}
	}
}

func TestAssembleFailsOnMissingRecord(t *testing.T) {
	enc := &fakeEncoder{}
	asm, _ := newAssemblerForTest(t, enc)
	dir := t.TempDir()

	script := mixedScript()
	records := []domain.MediaRecord{
		writeClip(t, dir, 1),
		writeClip(t, dir, 3),
	}

	_, err := asm.Assemble(context.Background(), script, records)
	var missing *domain.MissingSegmentsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingSegmentsError", err)
	}
	if len(missing.Orders) != 1 || missing.Orders[0] != 2 {
		t.Fatalf("missing orders = %v, want [2]", missing.Orders)
	}
	if len(enc.concats) != 0 {
		t.Fatalf("concat must not run when segments are missing")
	}
}

func TestAssembleFailsOnMissingFile(t *testing.T) {
	enc := &fakeEncoder{}
	asm, _ := newAssemblerForTest(t, enc)
	dir := t.TempDir()

	script := mixedScript()
	records := []domain.MediaRecord{
		writeClip(t, dir, 1),
		{Order: 2, Path: filepath.Join(dir, "does-not-exist.mp4"), Kind: domain.KindRealFootage},
		writeClip(t, dir, 3),
	}

	_, err := asm.Assemble(context.Background(), script, records)
	var missing *domain.MissingSegmentsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingSegmentsError", err)
	}
	if len(missing.Orders) != 1 || missing.Orders[0] != 2 {
		t.Fatalf("missing orders = %v, want [2]", missing.Orders)
	}
}

func TestAssembleEnumeratesAllMissingOrders(t *testing.T) {
	enc := &fakeEncoder{}
	asm, _ := newAssemblerForTest(t, enc)
	dir := t.TempDir()

	script := mixedScript()
	records := []domain.MediaRecord{writeClip(t, dir, 2)}

	_, err := asm.Assemble(context.Background(), script, records)
	var missing *domain.MissingSegmentsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingSegmentsError", err)
	}
	if len(missing.Orders) != 2 || missing.Orders[0] != 1 || missing.Orders[1] != 3 {
		t.Fatalf("missing orders = %v, want [1, 3]", missing.Orders)
	}
}

func TestAssembleRejectsEmptyScript(t *testing.T) {
	asm, _ := newAssemblerForTest(t, &fakeEncoder{})
	if _, err := asm.Assemble(context.Background(), &domain.Script{}, nil); !errors.Is(err, domain.ErrNoScript) {
		t.Fatalf("error = %v, want ErrNoScript", err)
	}
}

func TestAssemblePropagatesEncoderFailure(t *testing.T) {
	enc := &fakeEncoder{concatErr: errors.New("ffmpeg exit 1")}
	asm, _ := newAssemblerForTest(t, enc)
	dir := t.TempDir()

	script := mixedScript()
	records := []domain.MediaRecord{
		writeClip(t, dir, 1),
		writeClip(t, dir, 2),
		writeClip(t, dir, 3),
	}

	if _, err := asm.Assemble(context.Background(), script, records); err == nil {
		t.Fatalf("expected encoder failure to propagate")
	}
}
