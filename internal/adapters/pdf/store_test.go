package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_Save(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "artifacts")
	store, err := NewFileStore(dir, "https://files.example.com/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url, err := store.Save(context.Background(), "form-1", []byte("%PDF-1.7 body"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://files.example.com/artifacts/i9-form-1-") || !strings.HasSuffix(url, ".pdf") {
		t.Fatalf("unexpected url: %s", url)
	}

	name := strings.TrimPrefix(url, "https://files.example.com/artifacts/")
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(b) != "%PDF-1.7 body" {
		t.Fatalf("unexpected content: %q", b)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact in dir, got %d entries", len(entries))
	}
}

func TestFileStore_SaveUniqueNames(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir(), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := store.Save(context.Background(), "form-1", []byte("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Save(context.Background(), "form-1", []byte("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct artifact names, got %s twice", first)
	}
	if !strings.HasPrefix(first, ArtifactPathPrefix) {
		t.Fatalf("expected relative url without base, got %s", first)
	}
}

func TestFileStore_InvalidFormID(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir(), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"", "../etc", "a/b"} {
		if _, err := store.Save(context.Background(), id, []byte("x")); !errors.Is(err, ErrInvalidFormID) {
			t.Fatalf("expected ErrInvalidFormID for %q, got %v", id, err)
		}
	}
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := NewFileStore("  ", "", nil); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
