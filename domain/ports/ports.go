package ports

import (
	"context"
	"time"

	"vidredact/domain/model"
)

// VideoRedactor defines the main processing interface
type VideoRedactor interface {
	// ProcessFile redacts a single video file into outputPath
	ProcessFile(ctx context.Context, inputPath, outputPath string, opts ...Option) (*model.JobResult, error)

	// ProcessBatch discovers candidate files in inputDir and processes
	// them one at a time into outputDir
	ProcessBatch(ctx context.Context, inputDir, outputDir string, opts ...Option) (*model.BatchResult, error)
}

// FrameSource is a scoped decoder handle for one source file. Implementations
// must be released with Close on every exit path.
type FrameSource interface {
	// Info returns the source geometry and declared stream properties
	Info() model.SourceInfo

	// ReadFrame returns the next decoded RGBA frame, or ok=false on
	// end-of-stream. The returned buffer is owned by the caller.
	ReadFrame() (frame []byte, ok bool)

	// Err distinguishes a decode read error from a clean end-of-stream.
	// Both stop the frame loop; only a read error is worth a warning.
	Err() error

	Close() error
}

// FrameWriter is a scoped encoder handle for one output file.
type FrameWriter interface {
	// WriteFrame appends one RGBA frame of the declared frame size
	WriteFrame(frame []byte) error

	Close() error
}

// FrameCodec opens decoders and writers. The writer selects its encoder from
// the codec table by the output path's extension; the bitrate hint follows
// model.TargetBitrate and is best-effort.
type FrameCodec interface {
	Open(path string) (FrameSource, error)
	CreateWriter(outputPath string, info model.SourceInfo) (FrameWriter, error)
}

// ToolResult carries the outcome of one external transcoder invocation.
type ToolResult struct {
	ExitCode int
	Stderr   string
	Duration time.Duration
}

// TranscodeExecutor is the abstraction for external transcoder execution
type TranscodeExecutor interface {
	// Execute runs the transcoder with the given arguments. A non-zero
	// exit returns an error alongside the captured result.
	Execute(ctx context.Context, args []string) (*ToolResult, error)

	// Probe runs the stream prober and returns its JSON output
	Probe(ctx context.Context, inputPath string) ([]byte, error)
}

// AudioReattacher finalizes a silent video artifact into the output path,
// either by muxing extracted audio back in or by a direct move.
type AudioReattacher interface {
	// Reattach extracts the source audio, muxes it with the silent video
	// and writes the final output. The extracted audio artifact is
	// removed whether muxing succeeds or fails. The policy bounds both
	// invocations; zero fields fall back to construction defaults.
	Reattach(ctx context.Context, source model.VideoFile, silent model.SilentVideo, audio model.AudioTrack, outputPath string, policy model.ToolPolicy) error

	// HasAudioStream reports whether the source declares an audio stream
	HasAudioStream(ctx context.Context, source model.VideoFile) (bool, error)
}

// StorageProvider abstracts local filesystem operations
type StorageProvider interface {
	Exists(path string) (bool, error)
	Remove(path string) error

	// Move relocates a file, falling back to copy+remove across devices
	Move(src, dst string) error
}

// JobWorkspace is a per-job scratch directory holding the silent video and
// extracted audio artifacts. Borrowed by pipeline stages for the duration of
// one job; purged when the job ends.
type JobWorkspace interface {
	SilentVideo(baseName string) model.SilentVideo
	AudioTrack() model.AudioTrack
	Purge() error
}

// WorkspaceManager owns the per-run workspace root.
type WorkspaceManager interface {
	// Acquire creates a uniquely named scratch directory for one job
	Acquire(jobID string) (JobWorkspace, error)

	// Close removes the workspace root and everything under it
	Close() error
}

// Option is the functional option type
type Option func(*model.ProcessingOptions)

// WithRegion sets the redaction rectangle
func WithRegion(r model.Region) Option {
	return func(o *model.ProcessingOptions) {
		o.Region = r
	}
}

// WithBlur sets the Gaussian blur parameters
func WithBlur(kernel, sigma int) Option {
	return func(o *model.ProcessingOptions) {
		o.Blur = model.BlurParams{Kernel: kernel, Sigma: sigma}
	}
}

// WithRemoveAudio selects the direct-move reattachment policy
func WithRemoveAudio(remove bool) Option {
	return func(o *model.ProcessingOptions) {
		o.RemoveAudio = remove
	}
}

// WithOverwrite replaces existing outputs instead of failing the job
func WithOverwrite(overwrite bool) Option {
	return func(o *model.ProcessingOptions) {
		o.Overwrite = overwrite
	}
}

// WithWorkers sets the number of frame-transform workers
func WithWorkers(n int) Option {
	return func(o *model.ProcessingOptions) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithToolTimeout bounds each external transcoder invocation
func WithToolTimeout(d time.Duration) Option {
	return func(o *model.ProcessingOptions) {
		if d > 0 {
			o.ToolTimeout = d
		}
	}
}

// WithRetry sets the attempt count for external transcoder invocations
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(o *model.ProcessingOptions) {
		if maxAttempts > 0 {
			o.MaxRetries = maxAttempts
		}
		if delay > 0 {
			o.RetryDelay = delay
		}
	}
}
