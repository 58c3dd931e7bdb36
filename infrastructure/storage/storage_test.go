package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageExists(t *testing.T) {
	s := NewLocalStorage()
	path := filepath.Join(t.TempDir(), "file")

	ok, err := s.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("missing file reported as existing")
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("existing file reported as missing")
	}
}

func TestLocalStorageRemoveMissingFile(t *testing.T) {
	s := NewLocalStorage()
	if err := s.Remove(filepath.Join(t.TempDir(), "never-there")); err != nil {
		t.Errorf("Remove of missing file: %v", err)
	}
}

func TestLocalStorageMove(t *testing.T) {
	s := NewLocalStorage()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Move(src, dst); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after move")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("moved content = %q", got)
	}
}

func TestLocalStorageMoveSurfacesRenameError(t *testing.T) {
	s := NewLocalStorage()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A missing destination directory is a plain rename failure, not a
	// cross-device condition; the copy fallback must not mask it.
	err := s.Move(src, filepath.Join(dir, "no-such-dir", "dst"))
	if err == nil {
		t.Fatal("expected rename failure")
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		t.Errorf("error type = %T, want the rename's *os.LinkError", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Errorf("source lost on failed move: %v", statErr)
	}
}

func TestLocalStorageMoveMissingSource(t *testing.T) {
	s := NewLocalStorage()
	dir := t.TempDir()
	if err := s.Move(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Error("expected error moving a missing source")
	}
}

func TestManagerLifecycle(t *testing.T) {
	outputDir := t.TempDir()

	m, err := NewManager(outputDir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	root := m.Root()
	if filepath.Base(root) != workspaceDirName {
		t.Errorf("root = %s, want basename %s", root, workspaceDirName)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("workspace root missing: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Error("workspace root survives Close")
	}
}

func TestManagerRefusesConcurrentRun(t *testing.T) {
	outputDir := t.TempDir()

	m, err := NewManager(outputDir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if _, err := NewManager(outputDir); err == nil {
		t.Error("second manager acquired the same workspace root")
	}
}

func TestAcquireCreatesIsolatedJobDirs(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	a, err := m.Acquire("job-a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	b, err := m.Acquire("job-b")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	silentA := a.SilentVideo("clip.mp4")
	silentB := b.SilentVideo("clip.mp4")
	if silentA.Path == silentB.Path {
		t.Error("two jobs share the same silent artifact path")
	}
	if filepath.Base(silentA.Path) != "clip.mp4" {
		t.Errorf("silent artifact basename = %s, want clip.mp4", filepath.Base(silentA.Path))
	}
	if !strings.HasPrefix(silentA.Path, m.Root()) {
		t.Error("job workspace not rooted under the manager root")
	}
	if filepath.Base(a.AudioTrack().Path) != audioArtifact {
		t.Errorf("audio artifact basename = %s, want %s", filepath.Base(a.AudioTrack().Path), audioArtifact)
	}
}

func TestWorkspacePurge(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	ws, err := m.Acquire("job-a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	silent := ws.SilentVideo("clip.mp4")
	if err := os.WriteFile(silent.Path, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ws.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, err := os.Stat(silent.Path); !os.IsNotExist(err) {
		t.Error("artifact survives Purge")
	}
	if _, err := os.Stat(m.Root()); err != nil {
		t.Error("Purge removed more than the job directory")
	}
}
