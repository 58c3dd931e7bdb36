package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"vidredact/domain/model"
	"vidredact/domain/ports"
)

const (
	workspaceDirName = ".vidredact-tmp"
	audioArtifact    = "audio_temp.m4a"
)

// Manager owns the per-run workspace root. Each job gets its own uniquely
// named scratch directory underneath it, so no on-disk state is ever shared
// between jobs. The root is flock-guarded: two runs against the same output
// directory cannot interleave.
type Manager struct {
	root string
	lock *flock.Flock
}

// NewManager creates the workspace root under outputDir and takes the run
// lock. A second concurrent run against the same output directory fails
// here rather than corrupting in-flight artifacts.
func NewManager(outputDir string) (*Manager, error) {
	root := filepath.Join(outputDir, workspaceDirName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}

	lock := flock.New(filepath.Join(root, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock workspace root: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("workspace %s is in use by another run", root)
	}

	return &Manager{root: root, lock: lock}, nil
}

// Root returns the workspace root directory.
func (m *Manager) Root() string {
	return m.root
}

// Acquire creates a scratch directory for one job.
func (m *Manager) Acquire(jobID string) (ports.JobWorkspace, error) {
	dir := filepath.Join(m.root, "job-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job workspace for %s: %w", jobID, err)
	}
	return &jobWorkspace{dir: dir}, nil
}

// Close releases the run lock and removes the workspace root with
// everything still under it.
func (m *Manager) Close() error {
	var err error
	if m.lock != nil {
		err = multierr.Append(err, m.lock.Unlock())
	}
	err = multierr.Append(err, os.RemoveAll(m.root))
	return err
}

type jobWorkspace struct {
	dir string
}

// SilentVideo names the audio-less video artifact for this job. It keeps
// the input's base name so the encoder selects the codec by extension.
func (w *jobWorkspace) SilentVideo(baseName string) model.SilentVideo {
	return model.SilentVideo{Path: filepath.Join(w.dir, baseName)}
}

// AudioTrack names the extracted audio artifact for this job.
func (w *jobWorkspace) AudioTrack() model.AudioTrack {
	return model.AudioTrack{Path: filepath.Join(w.dir, audioArtifact)}
}

// Purge removes the job directory and all artifacts in it.
func (w *jobWorkspace) Purge() error {
	return os.RemoveAll(w.dir)
}
