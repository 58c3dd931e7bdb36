// Package config loads and validates the TOML configuration file.
//
// Validation has two tiers. Violations of hard invariants (blur kernel
// parity, empty directories) are fatal and abort the run before any file is
// opened. Soft fields (region coordinates, sigma, formats list) fall back
// to documented defaults, and every fallback is reported as a warning.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"vidredact/domain/model"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "vidredact.toml"

// Paths contains directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	Overwrite bool   `toml:"overwrite"`
}

// Region contains the redaction rectangle, frame-relative.
type Region struct {
	X      int `toml:"x"`
	Y      int `toml:"y"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Processing contains transform and external-tool settings.
type Processing struct {
	BlurKernel         int  `toml:"blur_kernel"`
	BlurSigma          int  `toml:"blur_sigma"`
	RemoveAudio        bool `toml:"remove_audio"`
	Workers            int  `toml:"workers"`
	ToolTimeoutSeconds int  `toml:"tool_timeout_seconds"`
	MaxToolAttempts    int  `toml:"max_tool_attempts"`
}

// Formats contains the file discovery filter.
type Formats struct {
	// Supported is a comma-separated list of dot-prefixed extensions.
	Supported string `toml:"supported"`
}

// FFmpeg contains external binary locations. Empty values resolve via PATH.
type FFmpeg struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
}

// Logging contains log output configuration.
type Logging struct {
	Development bool `toml:"development"`
}

// Config encapsulates all configuration values.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Region     Region     `toml:"region"`
	Processing Processing `toml:"processing"`
	Formats    Formats    `toml:"formats"`
	FFmpeg     FFmpeg     `toml:"ffmpeg"`
	Logging    Logging    `toml:"logging"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  "./input",
			OutputDir: "./output",
			Overwrite: false,
		},
		Region: Region{X: 100, Y: 200, Width: 300, Height: 250},
		Processing: Processing{
			BlurKernel:         55,
			BlurSigma:          0,
			RemoveAudio:        false,
			Workers:            0,
			ToolTimeoutSeconds: 600,
			MaxToolAttempts:    1,
		},
		Formats: Formats{
			Supported: ".mp4, .avi, .mov, .mkv, .flv, .webm, .ts",
		},
	}
}

// Sample returns the embedded sample configuration file contents.
func Sample() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. An explicit
// path that does not exist is an error; with no path, DefaultFileName in
// the working directory is used when present, otherwise pure defaults.
// The returned warnings describe soft-fallback substitutions.
func Load(path string) (*Config, []string, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, nil, err
	}
	if path != "" && !exists {
		return nil, nil, fmt.Errorf("config file not found: %s", resolved)
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, nil, fmt.Errorf("parse config: %w", err)
		}
	}

	warnings := cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, warnings, nil
}

func resolvePath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultFileName
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return abs, true, nil
}

// Options converts the configuration to per-job processing options.
func (c *Config) Options() *model.ProcessingOptions {
	opts := model.DefaultProcessingOptions()
	opts.Region = model.Region{
		X:      c.Region.X,
		Y:      c.Region.Y,
		Width:  c.Region.Width,
		Height: c.Region.Height,
	}
	opts.Blur = model.BlurParams{Kernel: c.Processing.BlurKernel, Sigma: c.Processing.BlurSigma}
	opts.RemoveAudio = c.Processing.RemoveAudio
	opts.Overwrite = c.Paths.Overwrite
	opts.Workers = c.Processing.Workers
	opts.ToolTimeout = time.Duration(c.Processing.ToolTimeoutSeconds) * time.Second
	opts.MaxRetries = c.Processing.MaxToolAttempts
	return opts
}

// Extensions returns the parsed discovery filter.
func (c *Config) Extensions() []string {
	var exts []string
	for _, raw := range strings.Split(c.Formats.Supported, ",") {
		ext := strings.ToLower(strings.TrimSpace(raw))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}
