package model

import (
	"path/filepath"
	"strings"
	"time"
)

// VideoFile is a discovered input file. Identity is the absolute path;
// the extension is kept lower-cased for codec selection.
type VideoFile struct {
	Path string
	Ext  string
}

// NewVideoFile builds a VideoFile from a path.
func NewVideoFile(path string) VideoFile {
	return VideoFile{
		Path: path,
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
}

// Name returns the base name of the file.
func (v VideoFile) Name() string {
	return filepath.Base(v.Path)
}

// Region is the redaction rectangle, in frame coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FitsWithin reports whether the region lies fully inside a frame of the
// given dimensions.
func (r Region) FitsWithin(frameWidth, frameHeight int) bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= frameWidth &&
		r.Y+r.Height <= frameHeight
}

// BlurParams holds Gaussian blur parameters. Kernel must be a positive odd
// integer; Sigma ≥ 0. Sigma 0 derives the value from the kernel size the
// same way OpenCV does.
type BlurParams struct {
	Kernel int
	Sigma  int
}

// EffectiveSigma returns the sigma actually used for blurring. A
// non-positive sigma is computed from the kernel size:
// 0.3*((k-1)*0.5 - 1) + 0.8.
func (b BlurParams) EffectiveSigma() float64 {
	if b.Sigma > 0 {
		return float64(b.Sigma)
	}
	return 0.3*((float64(b.Kernel)-1)*0.5-1) + 0.8
}

// JobState tracks the per-job state machine.
type JobState string

const (
	StatePending      JobState = "pending"
	StateDecoding     JobState = "decoding"
	StateTransforming JobState = "transforming"
	StateEncoding     JobState = "encoding"
	StateDirectMove   JobState = "direct_move"
	StateAudioExtract JobState = "audio_extract"
	StateAudioMux     JobState = "audio_mux"
	StateDone         JobState = "done"
	StateFailed       JobState = "failed"
)

// ProcessingOptions holds all per-job configuration.
type ProcessingOptions struct {
	Region Region
	Blur   BlurParams

	// RemoveAudio selects the direct-move reattachment policy.
	RemoveAudio bool

	// Overwrite replaces an existing output instead of failing the job.
	Overwrite bool

	// Workers is the number of frame-transform workers. 1 processes
	// frames strictly sequentially.
	Workers int

	// ToolTimeout bounds each external transcoder invocation.
	ToolTimeout time.Duration

	// MaxRetries and RetryDelay control retry of external tool calls.
	// MaxRetries 1 means a single attempt.
	MaxRetries int
	RetryDelay time.Duration
}

// ToolPolicy bounds one external transcoder invocation: a per-call timeout
// and the attempt schedule. Zero fields fall back to the executor's
// construction defaults.
type ToolPolicy struct {
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// ToolPolicy extracts the external-tool policy from the options, so per-call
// option overrides reach each invocation.
func (o *ProcessingOptions) ToolPolicy() ToolPolicy {
	return ToolPolicy{
		Timeout:     o.ToolTimeout,
		MaxAttempts: o.MaxRetries,
		RetryDelay:  o.RetryDelay,
	}
}

// DefaultProcessingOptions returns the documented defaults.
func DefaultProcessingOptions() *ProcessingOptions {
	return &ProcessingOptions{
		Region:      Region{X: 100, Y: 200, Width: 300, Height: 250},
		Blur:        BlurParams{Kernel: 55, Sigma: 0},
		RemoveAudio: false,
		Overwrite:   false,
		Workers:     0, // resolved to NumCPU by the service
		ToolTimeout: 10 * time.Minute,
		MaxRetries:  1,
		RetryDelay:  time.Second,
	}
}

// Job is the unit of work producing one output file from one input file.
type Job struct {
	ID         string
	Input      VideoFile
	OutputPath string
	Options    *ProcessingOptions
}

// JobResult holds the outcome of one job.
type JobResult struct {
	JobID       string
	Input       VideoFile
	OutputPath  string
	State       JobState
	FramesRead  int
	FramesTotal int // declared by the container; may exceed FramesRead
	Duration    time.Duration
	Err         error
}

// Succeeded reports whether the job reached the done state.
func (r JobResult) Succeeded() bool {
	return r.State == StateDone && r.Err == nil
}

// BatchResult aggregates a whole run.
type BatchResult struct {
	Total     int
	Succeeded int
	Results   []JobResult
}
