// Package usecase wires the per-job pipeline into the batch orchestrator:
// file discovery, sequential job execution, per-file failure isolation,
// workspace lifecycle, and the succeeded/total aggregate.
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"vidredact/application/pipeline"
	"vidredact/domain/model"
	"vidredact/domain/ports"
	pkgerrors "vidredact/pkg/errors"
	"vidredact/pkg/logger"
	"vidredact/pkg/progress"
)

// WorkspaceFactory creates the per-run workspace manager rooted under the
// given output directory.
type WorkspaceFactory func(outputDir string) (ports.WorkspaceManager, error)

// RedactService is the main application service implementing
// ports.VideoRedactor.
type RedactService struct {
	pipeline   *pipeline.Pipeline
	workspaces WorkspaceFactory
	reporter   progress.Reporter
	log        *logger.Logger
	defaults   *model.ProcessingOptions
	extensions []string
}

// Config holds RedactService configuration
type Config struct {
	Codec      ports.FrameCodec
	Reattacher ports.AudioReattacher
	Storage    ports.StorageProvider
	Workspaces WorkspaceFactory
	Reporter   progress.Reporter
	Logger     *logger.Logger
	Defaults   *model.ProcessingOptions
	Extensions []string
}

// NewRedactService creates a new RedactService
func NewRedactService(cfg Config) (*RedactService, error) {
	if cfg.Codec == nil {
		return nil, fmt.Errorf("FrameCodec is required")
	}
	if cfg.Reattacher == nil {
		return nil, fmt.Errorf("AudioReattacher is required")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("StorageProvider is required")
	}
	if cfg.Workspaces == nil {
		return nil, fmt.Errorf("WorkspaceFactory is required")
	}

	log := cfg.Logger
	if log == nil {
		var err error
		log, err = logger.New(false)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = progress.NoopReporter{}
	}

	defaults := cfg.Defaults
	if defaults == nil {
		defaults = model.DefaultProcessingOptions()
	}
	if err := validateBlur(defaults.Blur); err != nil {
		return nil, err
	}

	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = pipeline.DefaultExtensions
	}

	return &RedactService{
		pipeline:   pipeline.NewPipeline(cfg.Codec, cfg.Reattacher, cfg.Storage, log),
		workspaces: cfg.Workspaces,
		reporter:   reporter,
		log:        log,
		defaults:   defaults,
		extensions: extensions,
	}, nil
}

// ProcessFile redacts a single video file into outputPath.
func (s *RedactService) ProcessFile(ctx context.Context, inputPath, outputPath string, opts ...ports.Option) (*model.JobResult, error) {
	options, err := s.resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	manager, err := s.workspaces(filepath.Dir(outputPath))
	if err != nil {
		return nil, pkgerrors.NewProcessingError("workspace", "failed to create workspace", err)
	}
	defer s.closeManager(manager)

	result := s.runJob(ctx, manager, model.NewVideoFile(inputPath), outputPath, options)
	return result, result.Err
}

// ProcessBatch discovers candidate files in inputDir and processes them
// strictly one at a time into outputDir. A file's failure is logged and
// does not stop the loop; the batch result reports succeeded/total.
func (s *RedactService) ProcessBatch(ctx context.Context, inputDir, outputDir string, opts ...ports.Option) (*model.BatchResult, error) {
	options, err := s.resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	files, err := pipeline.Discover(inputDir, s.extensions)
	if err != nil {
		return nil, err
	}
	s.reporter.Report(progress.Update{
		Stage:     progress.StageDiscover,
		Message:   fmt.Sprintf("%d candidate files in %s", len(files), inputDir),
		Timestamp: time.Now(),
	})

	batch := &model.BatchResult{Total: len(files)}
	if len(files) == 0 {
		s.log.Info("no candidate files found", zap.String("input_dir", inputDir))
		return batch, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	manager, err := s.workspaces(outputDir)
	if err != nil {
		return nil, pkgerrors.NewProcessingError("workspace", "failed to create workspace", err)
	}
	defer s.closeManager(manager)

	s.log.Info("starting batch",
		zap.Int("total", batch.Total),
		zap.String("input_dir", inputDir),
		zap.String("output_dir", outputDir),
	)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			s.log.Warn("batch interrupted", zap.Int("remaining", len(files)-i))
			break
		}

		s.log.Info("processing file",
			zap.Int("index", i+1),
			zap.Int("total", batch.Total),
			zap.String("file", file.Name()),
		)

		result := s.runJob(ctx, manager, file, filepath.Join(outputDir, file.Name()), options)
		batch.Results = append(batch.Results, *result)
		if result.Succeeded() {
			batch.Succeeded++
		}
	}

	s.log.Info("batch complete",
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("total", batch.Total),
	)
	return batch, nil
}

// runJob owns one job's lifecycle: workspace acquisition, pipeline run, and
// workspace purge. Job N+1 never starts before job N's workspace is gone.
func (s *RedactService) runJob(ctx context.Context, manager ports.WorkspaceManager, input model.VideoFile, outputPath string, options *model.ProcessingOptions) *model.JobResult {
	jobID := generateJobID(input.Path)
	log := s.log.With(zap.String("job_id", jobID), zap.String("file", input.Name()))

	workspace, err := manager.Acquire(jobID)
	if err != nil {
		log.Error("failed to acquire job workspace", zap.Error(err))
		return &model.JobResult{
			JobID:      jobID,
			Input:      input,
			OutputPath: outputPath,
			State:      model.StateFailed,
			Err:        pkgerrors.NewProcessingError("workspace", "failed to acquire job workspace", err),
		}
	}
	defer func() {
		if err := workspace.Purge(); err != nil {
			log.Warn("failed to purge job workspace", zap.Error(err))
		}
	}()

	job := &pipeline.Job{
		ID:         jobID,
		Input:      input,
		OutputPath: outputPath,
		Workspace:  workspace,
		Options:    options,
		Reporter:   s.reporter,
		Log:        log,
	}

	result, err := s.pipeline.Run(ctx, job)
	if err != nil {
		log.Error("job failed", zap.Error(err))
		return result
	}

	log.Info("job done",
		zap.Int("frames", result.FramesRead),
		zap.Duration("took", result.Duration),
	)
	return result
}

func (s *RedactService) resolveOptions(opts []ports.Option) (*model.ProcessingOptions, error) {
	options := *s.defaults
	for _, o := range opts {
		o(&options)
	}
	if options.Workers <= 0 {
		options.Workers = runtime.NumCPU()
	}
	if err := validateBlur(options.Blur); err != nil {
		return nil, err
	}
	if !validRegionShape(options.Region) {
		return nil, pkgerrors.NewValidationError("region", options.Region,
			"region coordinates must be non-negative and dimensions positive")
	}
	return &options, nil
}

func (s *RedactService) closeManager(manager ports.WorkspaceManager) {
	if err := manager.Close(); err != nil {
		s.log.Warn("failed to remove workspace root", zap.Error(err))
	}
}

// validateBlur enforces the kernel parity invariant. An invalid kernel is
// fatal to the whole run, never a per-job failure.
func validateBlur(b model.BlurParams) error {
	if b.Kernel <= 0 || b.Kernel%2 == 0 {
		return pkgerrors.NewValidationError("blur_kernel", b.Kernel,
			"kernel size must be a positive odd integer")
	}
	if b.Sigma < 0 {
		return pkgerrors.NewValidationError("blur_sigma", b.Sigma,
			"sigma must be >= 0")
	}
	return nil
}

func validRegionShape(r model.Region) bool {
	return r.X >= 0 && r.Y >= 0 && r.Width > 0 && r.Height > 0
}

func generateJobID(input string) string {
	return fmt.Sprintf("job-%d-%s", time.Now().UnixNano(), sanitize(input))
}

func sanitize(s string) string {
	if len(s) > 20 {
		s = s[len(s)-20:]
	}
	result := make([]byte, 0, len(s))
	for _, c := range []byte(s) {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
