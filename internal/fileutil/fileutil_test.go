package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNonEmptyFile(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.mp3")
	if NonEmptyFile(missing) {
		t.Error("missing file reported non-empty")
	}

	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if NonEmptyFile(empty) {
		t.Error("zero-byte file reported non-empty")
	}

	full := filepath.Join(dir, "full.mp3")
	if err := os.WriteFile(full, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !NonEmptyFile(full) {
		t.Error("file with content reported empty")
	}

	if NonEmptyFile(dir) {
		t.Error("directory reported as non-empty file")
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FileSize(path); got != 5 {
		t.Fatalf("FileSize = %d, want 5", got)
	}
	if got := FileSize(filepath.Join(dir, "absent")); got != 0 {
		t.Fatalf("FileSize for missing file = %d, want 0", got)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("remove existing: %v", err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("remove missing should succeed: %v", err)
	}
}

func TestRemoveArtifacts(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "Artist - Song [Live].mp3")

	leftovers := []string{
		"Artist - Song [Live].mp3",
		"Artist - Song [Live].webm",
		"Artist - Song [Live].m4a.part",
	}
	for _, name := range leftovers {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	unrelated := filepath.Join(dir, "Artist - Song.mp3")
	if err := os.WriteFile(unrelated, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RemoveArtifacts(final); err != nil {
		t.Fatalf("RemoveArtifacts: %v", err)
	}

	for _, name := range leftovers {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s removed, stat err = %v", name, err)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("unrelated file should survive: %v", err)
	}
}

func TestRemoveArtifactsMissingDir(t *testing.T) {
	if err := RemoveArtifacts(filepath.Join(t.TempDir(), "absent", "x.mp3")); err != nil {
		t.Fatalf("missing directory should be a no-op: %v", err)
	}
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.mp3"), []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := DirSize(dir); got != 8 {
		t.Fatalf("DirSize = %d, want 8", got)
	}
	if got := DirSize(filepath.Join(dir, "absent")); got != 0 {
		t.Fatalf("DirSize for missing dir = %d, want 0", got)
	}
}
