package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vidredact.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, warnings, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings for pure defaults: %v", warnings)
	}

	want := Default()
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("config = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadExplicitMissingPath(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want mention of not found", err)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
[paths]
input_dir = "/videos/in"
output_dir = "/videos/out"
overwrite = true

[region]
x = 10
y = 20
width = 30
height = 40

[processing]
blur_kernel = 31
blur_sigma = 5
remove_audio = true
workers = 4
tool_timeout_seconds = 120
max_tool_attempts = 2

[formats]
supported = ".mp4, .mkv"
`)

	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	opts := cfg.Options()
	if opts.Region.X != 10 || opts.Region.Y != 20 || opts.Region.Width != 30 || opts.Region.Height != 40 {
		t.Errorf("region = %+v", opts.Region)
	}
	if opts.Blur.Kernel != 31 || opts.Blur.Sigma != 5 {
		t.Errorf("blur = %+v", opts.Blur)
	}
	if !opts.RemoveAudio || !opts.Overwrite {
		t.Error("boolean flags not carried into options")
	}
	if opts.Workers != 4 {
		t.Errorf("workers = %d, want 4", opts.Workers)
	}
	if opts.ToolTimeout != 120*time.Second {
		t.Errorf("tool timeout = %s, want 2m", opts.ToolTimeout)
	}
	if opts.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", opts.MaxRetries)
	}
	if got, want := cfg.Extensions(), []string{".mp4", ".mkv"}; !reflect.DeepEqual(got, want) {
		t.Errorf("extensions = %v, want %v", got, want)
	}
}

func TestLoadEvenKernelIsFatal(t *testing.T) {
	path := writeConfig(t, `
[processing]
blur_kernel = 54
`)
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected fatal error for even blur kernel")
	}
}

func TestLoadNonPositiveKernelIsFatal(t *testing.T) {
	for _, kernel := range []string{"0", "-3"} {
		path := writeConfig(t, "[processing]\nblur_kernel = "+kernel+"\n")
		if _, _, err := Load(path); err == nil {
			t.Errorf("kernel %s accepted", kernel)
		}
	}
}

func TestLoadEmptyDirsAreFatal(t *testing.T) {
	path := writeConfig(t, `
[paths]
input_dir = ""
output_dir = "/out"
`)
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected fatal error for empty input_dir")
	}
}

func TestLoadSoftFallbacksWarn(t *testing.T) {
	path := writeConfig(t, `
[region]
x = -5
width = 0

[processing]
blur_sigma = -1
workers = -2
tool_timeout_seconds = 0

[formats]
supported = ""
`)

	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// x, width, sigma, workers, timeout, formats
	if len(warnings) != 6 {
		t.Errorf("warnings = %d (%v), want 6", len(warnings), warnings)
	}

	d := Default()
	if cfg.Region.X != d.Region.X || cfg.Region.Width != d.Region.Width {
		t.Errorf("region not defaulted: %+v", cfg.Region)
	}
	if cfg.Processing.BlurSigma != 0 {
		t.Errorf("sigma = %d, want 0", cfg.Processing.BlurSigma)
	}
	if cfg.Processing.Workers != 0 {
		t.Errorf("workers = %d, want 0", cfg.Processing.Workers)
	}
	if cfg.Processing.ToolTimeoutSeconds != d.Processing.ToolTimeoutSeconds {
		t.Errorf("timeout = %d", cfg.Processing.ToolTimeoutSeconds)
	}
	if cfg.Formats.Supported != d.Formats.Supported {
		t.Errorf("formats = %q", cfg.Formats.Supported)
	}
}

func TestExtensionsParsing(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{".mp4, .mkv", []string{".mp4", ".mkv"}},
		{"MP4,MOV", []string{".mp4", ".mov"}},
		{" .webm ", []string{".webm"}},
		{",,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		cfg := Config{Formats: Formats{Supported: tt.raw}}
		if got := cfg.Extensions(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Extensions(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSampleConfigIsValid(t *testing.T) {
	path := writeConfig(t, Sample())
	_, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("sample config produces warnings: %v", warnings)
	}
}
