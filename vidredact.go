// Package vidredact redacts a fixed rectangular region in every frame of a
// video file (Gaussian blur followed by pixelation), re-encodes the video,
// and reattaches the original audio track.
package vidredact

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vidredact/application/usecase"
	"vidredact/domain/model"
	"vidredact/domain/ports"
	"vidredact/infrastructure/codec"
	"vidredact/infrastructure/ffmpeg"
	"vidredact/infrastructure/storage"
	"vidredact/pkg/logger"
	"vidredact/pkg/progress"
	"vidredact/pkg/retry"
)

// Re-export types for convenient use by callers
type (
	Region            = model.Region
	BlurParams        = model.BlurParams
	ProcessingOptions = model.ProcessingOptions
	JobResult         = model.JobResult
	BatchResult       = model.BatchResult
	CodecTable        = model.CodecTable
	ProgressUpdate    = progress.Update
	ProgressStage     = progress.Stage
)

// Re-export pipeline stages
const (
	StageDiscover  = progress.StageDiscover
	StageDecode    = progress.StageDecode
	StageTransform = progress.StageTransform
	StageEncode    = progress.StageEncode
	StageAudio     = progress.StageAudio
	StageDone      = progress.StageDone
)

// Re-export option functions
var (
	WithRegion      = ports.WithRegion
	WithBlur        = ports.WithBlur
	WithRemoveAudio = ports.WithRemoveAudio
	WithOverwrite   = ports.WithOverwrite
	WithWorkers     = ports.WithWorkers
	WithToolTimeout = ports.WithToolTimeout
	WithRetry       = ports.WithRetry
)

// Config holds top-level configuration for the processor
type Config struct {
	// FFmpegPath is the path to the ffmpeg binary (auto-detected if empty)
	FFmpegPath string

	// FFprobePath is the path to the ffprobe binary (auto-detected if empty)
	FFprobePath string

	// Logger is an optional custom logger. Uses production zap if nil.
	Logger *logger.Logger

	// ZapLogger allows passing a *zap.Logger directly
	ZapLogger *zap.Logger

	// ProgressCh is an optional channel for receiving progress updates
	ProgressCh chan<- ProgressUpdate

	// Defaults overrides the built-in processing defaults
	Defaults *ProcessingOptions

	// Extensions is the file discovery filter (dot-prefixed). Defaults to
	// the supported container formats.
	Extensions []string

	// Codecs overrides the extension-to-encoder table
	Codecs CodecTable
}

// Processor is the main entry point
type Processor struct {
	service  *usecase.RedactService
	executor *ffmpeg.Executor
	log      *logger.Logger
}

// New creates a new Processor with the given configuration. The external
// transcoder binaries are resolved here; a missing binary fails
// construction so the caller can abort before touching any file.
func New(cfg Config) (*Processor, error) {
	log := cfg.Logger
	if log == nil && cfg.ZapLogger != nil {
		log = logger.FromZap(cfg.ZapLogger)
	}
	if log == nil {
		var err error
		log, err = logger.New(false)
		if err != nil {
			return nil, err
		}
	}

	executor, err := ffmpeg.NewExecutor(ffmpeg.ExecutorConfig{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	defaults := cfg.Defaults
	if defaults == nil {
		defaults = model.DefaultProcessingOptions()
	}

	store := storage.NewLocalStorage()

	reattacher, err := ffmpeg.NewReattacher(ffmpeg.ReattacherConfig{
		Executor: executor,
		Storage:  store,
		Logger:   log,
		Timeout:  defaults.ToolTimeout,
		Retry: retry.Config{
			MaxAttempts: defaults.MaxRetries,
			Delay:       defaults.RetryDelay,
			Multiplier:  2.0,
			MaxDelay:    30 * time.Second,
		},
	})
	if err != nil {
		return nil, err
	}

	var reporter progress.Reporter = progress.NoopReporter{}
	if cfg.ProgressCh != nil {
		reporter = progress.NewChannelReporter(cfg.ProgressCh)
	}

	svc, err := usecase.NewRedactService(usecase.Config{
		Codec:      codec.NewBridge(cfg.Codecs),
		Reattacher: reattacher,
		Storage:    store,
		Workspaces: func(outputDir string) (ports.WorkspaceManager, error) {
			return storage.NewManager(outputDir)
		},
		Reporter:   reporter,
		Logger:     log,
		Defaults:   defaults,
		Extensions: cfg.Extensions,
	})
	if err != nil {
		return nil, err
	}

	return &Processor{
		service:  svc,
		executor: executor,
		log:      log,
	}, nil
}

// ProcessFile redacts a single video file
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputPath string, opts ...ports.Option) (*JobResult, error) {
	return p.service.ProcessFile(ctx, inputPath, outputPath, opts...)
}

// ProcessBatch redacts every candidate file in inputDir into outputDir,
// one file at a time
func (p *Processor) ProcessBatch(ctx context.Context, inputDir, outputDir string, opts ...ports.Option) (*BatchResult, error) {
	return p.service.ProcessBatch(ctx, inputDir, outputDir, opts...)
}

// ToolVersion returns the external transcoder's version line
func (p *Processor) ToolVersion(ctx context.Context) (string, error) {
	return p.executor.Version(ctx)
}

// Close flushes the logger and releases resources
func (p *Processor) Close() {
	_ = p.log.Sync()
}
