// Package pipeline implements file discovery and the per-job processing
// pipeline: decode, region transform, re-encode, audio reattachment, and
// atomic output finalization.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"vidredact/domain/model"
	"vidredact/domain/ports"
	pkgerrors "vidredact/pkg/errors"
	"vidredact/pkg/logger"
	"vidredact/pkg/progress"
)

// Job holds the state of one file's processing run. The workspace is
// borrowed from the orchestrator for the duration of the job.
type Job struct {
	ID         string
	Input      model.VideoFile
	OutputPath string
	Workspace  ports.JobWorkspace
	Options    *model.ProcessingOptions
	Reporter   progress.Reporter
	Log        *logger.Logger
}

// Pipeline coordinates the codec bridge and audio reattachment for a job.
type Pipeline struct {
	codec      ports.FrameCodec
	reattacher ports.AudioReattacher
	storage    ports.StorageProvider
	log        *logger.Logger
}

// NewPipeline creates a per-job processing pipeline.
func NewPipeline(codec ports.FrameCodec, reattacher ports.AudioReattacher, storage ports.StorageProvider, log *logger.Logger) *Pipeline {
	return &Pipeline{
		codec:      codec,
		reattacher: reattacher,
		storage:    storage,
		log:        log,
	}
}

// Run executes the full pipeline for one job. The returned result is
// populated in both the success and the failure case; err is non-nil
// exactly when the job failed. On failure any partial file at the output
// path has been removed. The job workspace is purged by the caller.
func (p *Pipeline) Run(ctx context.Context, job *Job) (*model.JobResult, error) {
	start := time.Now()
	result := &model.JobResult{
		JobID:      job.ID,
		Input:      job.Input,
		OutputPath: job.OutputPath,
		State:      model.StatePending,
	}

	// Output placement policy, checked before any decode is attempted.
	// The existing-output failure must leave the existing file untouched,
	// so it bypasses the partial-output cleanup below.
	if err := p.prepareOutput(job); err != nil {
		return p.finish(result, start, err)
	}

	err := p.process(ctx, job, result)
	if err != nil {
		if rmErr := p.storage.Remove(job.OutputPath); rmErr != nil {
			p.log.Warn("failed to remove partial output",
				zap.String("path", job.OutputPath),
				zap.Error(rmErr),
			)
		}
		return p.finish(result, start, err)
	}

	result.State = model.StateDone
	job.report(progress.StageDone, 100, "done")
	return p.finish(result, start, nil)
}

func (p *Pipeline) finish(result *model.JobResult, start time.Time, err error) (*model.JobResult, error) {
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		result.State = model.StateFailed
	}
	return result, err
}

func (p *Pipeline) prepareOutput(job *Job) error {
	exists, err := p.storage.Exists(job.OutputPath)
	if err != nil {
		return pkgerrors.NewProcessingError("prepare", "failed to check output path", err)
	}
	if !exists {
		return nil
	}
	if !job.Options.Overwrite {
		return pkgerrors.NewValidationError("outputPath", job.OutputPath, "output already exists")
	}
	if err := p.storage.Remove(job.OutputPath); err != nil {
		return pkgerrors.NewProcessingError("prepare", "failed to remove existing output", err)
	}
	return nil
}

func (p *Pipeline) process(ctx context.Context, job *Job, result *model.JobResult) error {
	silent, err := p.encodeSilent(ctx, job, result)
	if err != nil {
		return err
	}
	return p.reattachAudio(ctx, job, result, silent)
}

// encodeSilent decodes the source, transforms every frame, and encodes the
// audio-less artifact into the job workspace. Decoder and writer handles
// are released on every exit path before returning.
func (p *Pipeline) encodeSilent(ctx context.Context, job *Job, result *model.JobResult) (model.SilentVideo, error) {
	var silent model.SilentVideo

	result.State = model.StateDecoding
	job.report(progress.StageDecode, 5, "opening source")

	src, err := p.codec.Open(job.Input.Path)
	if err != nil {
		return silent, err
	}

	info := src.Info()
	result.FramesTotal = info.Frames

	// The region check on the source geometry is representative for every
	// frame of the file; a violation fails the job before any frame is
	// written.
	region := job.Options.Region
	if !region.FitsWithin(info.Width, info.Height) {
		regionErr := pkgerrors.NewRegionError(region.X, region.Y, region.Width, region.Height, info.Width, info.Height)
		return silent, multierr.Append(regionErr, src.Close())
	}

	silent = job.Workspace.SilentVideo(job.Input.Name())
	dst, err := p.codec.CreateWriter(silent.Path, info)
	if err != nil {
		closeErr := src.Close()
		return silent, multierr.Append(err, closeErr)
	}

	result.State = model.StateTransforming
	job.report(progress.StageTransform, 20, "transforming frames")

	pool := NewFramePool(job.Options.Workers, region, job.Options.Blur)
	read, runErr := pool.Run(ctx, src, dst)
	result.FramesRead = read
	result.State = model.StateEncoding

	readErr := src.Err()
	closeErr := multierr.Append(src.Close(), dst.Close())
	if runErr != nil {
		return silent, multierr.Append(runErr, closeErr)
	}
	if closeErr != nil {
		return silent, pkgerrors.NewProcessingError("encode", "failed to release codec handles", closeErr)
	}

	// Early end-of-stream is tolerated; the job completes with whatever
	// frames were read. A genuine read error is surfaced distinctly.
	if info.Frames > 0 && read < info.Frames {
		p.log.Warn("decode stopped before declared frame count",
			zap.String("file", job.Input.Name()),
			zap.Int("read", read),
			zap.Int("declared", info.Frames),
			zap.NamedError("read_error", readErr),
		)
	}

	job.report(progress.StageEncode, 70, "silent video encoded")
	return silent, nil
}

func (p *Pipeline) reattachAudio(ctx context.Context, job *Job, result *model.JobResult, silent model.SilentVideo) error {
	if job.Options.RemoveAudio {
		result.State = model.StateDirectMove
		job.report(progress.StageAudio, 90, "moving silent video to output")
		if err := p.storage.Move(silent.Path, job.OutputPath); err != nil {
			return pkgerrors.NewProcessingError("direct_move", "failed to move output into place", err)
		}
		return nil
	}

	hasAudio, err := p.reattacher.HasAudioStream(ctx, job.Input)
	if err != nil {
		// The probe is advisory; extraction decides for real.
		p.log.Warn("audio stream probe failed, attempting extraction anyway",
			zap.String("file", job.Input.Name()),
			zap.Error(err),
		)
		hasAudio = true
	}
	if !hasAudio {
		p.log.Warn("source has no audio stream, writing video only",
			zap.String("file", job.Input.Name()),
		)
		result.State = model.StateDirectMove
		if err := p.storage.Move(silent.Path, job.OutputPath); err != nil {
			return pkgerrors.NewProcessingError("direct_move", "failed to move output into place", err)
		}
		return nil
	}

	result.State = model.StateAudioExtract
	job.report(progress.StageAudio, 85, "reattaching audio")

	if err := p.reattacher.Reattach(ctx, job.Input, silent, job.Workspace.AudioTrack(), job.OutputPath, job.Options.ToolPolicy()); err != nil {
		if perr, ok := pkgerrors.As[*pkgerrors.ProcessingError](err); ok && perr.Stage == "audio_mux" {
			result.State = model.StateAudioMux
		}
		return err
	}
	result.State = model.StateAudioMux
	return nil
}

func (j *Job) report(stage progress.Stage, percent float64, msg string) {
	if j.Reporter == nil {
		return
	}
	j.Reporter.Report(progress.Update{
		JobID:     j.ID,
		File:      j.Input.Name(),
		Stage:     stage,
		Percent:   percent,
		Message:   msg,
		Timestamp: time.Now(),
	})
}
