package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRunDirIsUnique(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	first, err := store.NewRunDir()
	if err != nil {
		t.Fatalf("run dir: %v", err)
	}
	second, err := store.NewRunDir()
	if err != nil {
		t.Fatalf("run dir: %v", err)
	}
	if first == second {
		t.Fatalf("run dirs collide: %s", first)
	}
	for _, dir := range []string{first, second} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("run dir %s not created: %v", dir, err)
		}
		if !strings.HasPrefix(dir, store.BasePath()) {
			t.Fatalf("run dir %s outside base %s", dir, store.BasePath())
		}
	}
}

func TestFinalPathIsUnique(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	first := store.FinalPath()
	second := store.FinalPath()
	if first == second {
		t.Fatalf("final paths collide: %s", first)
	}
	if filepath.Ext(first) != ".mp4" {
		t.Fatalf("final path extension = %s", filepath.Ext(first))
	}
}

func TestWriteRejectsTraversal(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Write(context.Background(), "../outside.mp4", []byte("x")); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}

func TestWritePersistsUnderBase(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	path, err := store.Write(context.Background(), "runs/x/clip.mp4", []byte("data"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(path, store.BasePath()) {
		t.Fatalf("path %s outside base", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "data" {
		t.Fatalf("read back: %v %q", err, data)
	}
}

func TestNewMediaStoreRequiresPath(t *testing.T) {
	if _, err := NewMediaStore("  "); err == nil {
		t.Fatalf("expected error for blank base path")
	}
}
