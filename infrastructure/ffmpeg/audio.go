package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vidredact/domain/model"
	"vidredact/domain/ports"
	pkgerrors "vidredact/pkg/errors"
	"vidredact/pkg/logger"
	"vidredact/pkg/retry"
)

// Fixed reattachment parameters. The extraction re-encodes audio to AAC at
// 128 kbit/s; the mux re-encodes video at CRF 23 / medium preset and maps
// exactly one video and one audio stream.
const (
	audioCodec   = "aac"
	audioBitrate = "128k"
	videoCodec   = "libx264"
	videoCRF     = "23"
	videoPreset  = "medium"
)

// baseArgs are shared by every invocation: overwrite-confirm and minimal
// logging.
func baseArgs() []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error"}
}

// ExtractArgs builds the audio-extraction invocation: take the original
// input, drop video, re-encode audio to the fixed codec and bitrate.
func ExtractArgs(source model.VideoFile, audio model.AudioTrack) []string {
	args := baseArgs()
	return append(args,
		"-i", source.Path,
		"-vn",
		"-acodec", audioCodec,
		"-b:a", audioBitrate,
		audio.Path,
	)
}

// MuxArgs builds the mux invocation: silent video plus extracted audio,
// explicitly selecting stream 0 from each input.
func MuxArgs(silent model.SilentVideo, audio model.AudioTrack, outputPath string) []string {
	args := baseArgs()
	return append(args,
		"-i", silent.Path,
		"-i", audio.Path,
		"-c:v", videoCodec, "-crf", videoCRF, "-preset", videoPreset,
		"-c:a", audioCodec, "-b:a", audioBitrate,
		"-map", "0:v:0",
		"-map", "1:a:0",
		outputPath,
	)
}

// Reattacher implements ports.AudioReattacher with two transcoder
// invocations per job.
type Reattacher struct {
	executor ports.TranscodeExecutor
	storage  ports.StorageProvider
	log      *logger.Logger
	timeout  time.Duration
	retryCfg retry.Config
}

// ReattacherConfig holds Reattacher construction parameters.
type ReattacherConfig struct {
	Executor ports.TranscodeExecutor
	Storage  ports.StorageProvider
	Logger   *logger.Logger
	Timeout  time.Duration
	Retry    retry.Config
}

// NewReattacher creates an audio reattacher.
func NewReattacher(cfg ReattacherConfig) (*Reattacher, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("TranscodeExecutor is required")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("StorageProvider is required")
	}
	log := cfg.Logger
	if log == nil {
		log, _ = logger.New(false)
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}
	return &Reattacher{
		executor: cfg.Executor,
		storage:  cfg.Storage,
		log:      log,
		timeout:  cfg.Timeout,
		retryCfg: retryCfg,
	}, nil
}

// Reattach extracts the source audio track into the workspace audio
// artifact, then muxes it with the silent video into outputPath. The audio
// artifact is removed unconditionally once muxing has been attempted.
// Non-zero policy fields override the construction defaults, so per-call
// timeout and retry options bound both invocations.
func (r *Reattacher) Reattach(ctx context.Context, source model.VideoFile, silent model.SilentVideo, audio model.AudioTrack, outputPath string, policy model.ToolPolicy) error {
	timeout, retryCfg := r.resolve(policy)

	if err := r.run(ctx, timeout, retryCfg, ExtractArgs(source, audio)); err != nil {
		return pkgerrors.NewProcessingError("audio_extract", "audio extraction failed", err)
	}

	muxErr := r.run(ctx, timeout, retryCfg, MuxArgs(silent, audio, outputPath))

	// Guaranteed cleanup of the extracted artifact, success or failure.
	if err := r.storage.Remove(audio.Path); err != nil {
		r.log.Warn("failed to remove extracted audio artifact",
			zap.String("path", audio.Path),
			zap.Error(err),
		)
	}

	if muxErr != nil {
		return pkgerrors.NewProcessingError("audio_mux", "audio mux failed", muxErr)
	}
	return nil
}

// HasAudioStream probes the source and reports whether it declares at least
// one audio stream.
func (r *Reattacher) HasAudioStream(ctx context.Context, source model.VideoFile) (bool, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	data, err := r.executor.Probe(ctx, source.Path)
	if err != nil {
		return false, err
	}

	var probe struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	for _, s := range probe.Streams {
		if s.CodecType == "audio" {
			return true, nil
		}
	}
	return false, nil
}

// resolve merges a per-call policy over the construction defaults.
func (r *Reattacher) resolve(policy model.ToolPolicy) (time.Duration, retry.Config) {
	timeout := r.timeout
	if policy.Timeout > 0 {
		timeout = policy.Timeout
	}
	cfg := r.retryCfg
	if policy.MaxAttempts > 0 {
		cfg.MaxAttempts = policy.MaxAttempts
	}
	if policy.RetryDelay > 0 {
		cfg.Delay = policy.RetryDelay
	}
	return timeout, cfg
}

func (r *Reattacher) run(ctx context.Context, timeout time.Duration, cfg retry.Config, args []string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return retry.Do(ctx, cfg, func() error {
		_, err := r.executor.Execute(ctx, args)
		return err
	})
}
