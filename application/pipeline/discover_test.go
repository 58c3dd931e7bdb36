package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp4"))
	touch(t, filepath.Join(dir, "a.MKV")) // case-insensitive match
	touch(t, filepath.Join(dir, "c.txt"))
	touch(t, filepath.Join(dir, "noext"))
	touch(t, filepath.Join(dir, "sub", "nested.mp4")) // not recursed into

	files, err := Discover(dir, []string{".mp4", ".mkv"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	want := "a.MKV,b.mp4"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("discovered %q, want %q", got, want)
	}
}

func TestDiscoverSortedDeterministically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.mp4", "m.mp4", "a.mp4"} {
		touch(t, filepath.Join(dir, name))
	}

	first, err := Discover(dir, []string{".mp4"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Discover(dir, []string{".mp4"})
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 3 {
		t.Fatalf("got %d files, want 3", len(first))
	}
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Fatal("enumeration order differs between runs")
		}
	}
	if first[0].Name() != "a.mp4" || first[2].Name() != "z.mp4" {
		t.Errorf("files not sorted by name: %v", first)
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), []string{".mp4"})
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q does not mention directory not found", err)
	}
}

func TestDiscoverEmptyMatchSet(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp4"))

	files, err := Discover(dir, []string{".avi"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}
