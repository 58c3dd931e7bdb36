package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestProcessingErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewProcessingError("encode", "failed to write frames", cause)

	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable via errors.Is")
	}
	if err.Stage != "encode" {
		t.Errorf("stage = %s", err.Stage)
	}
	msg := err.Error()
	if !strings.Contains(msg, "stage=encode") || !strings.Contains(msg, "disk full") {
		t.Errorf("message = %q", msg)
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	inner := NewRegionError(10, 20, 300, 400, 100, 100)
	wrapped := fmt.Errorf("job failed: %w", inner)

	got, ok := As[*RegionError](wrapped)
	if !ok {
		t.Fatal("As failed to find *RegionError")
	}
	if got.FrameWidth != 100 || got.FrameHeight != 100 {
		t.Errorf("frame = %dx%d, want 100x100", got.FrameWidth, got.FrameHeight)
	}

	if _, ok := As[*FFmpegError](wrapped); ok {
		t.Error("As matched the wrong error type")
	}
}

func TestRegionErrorMessage(t *testing.T) {
	err := NewRegionError(100, 200, 300, 250, 320, 240)
	msg := err.Error()
	for _, want := range []string{"region 300x250+100+200", "frame 320x240", string(ErrCodeRegion)} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestFFmpegErrorTruncatesStderr(t *testing.T) {
	stderr := strings.Repeat("x", 500)
	err := NewFFmpegError("transcoder failed", []string{"-i", "in.mp4"}, 1, stderr, nil)

	msg := err.Error()
	if strings.Contains(msg, stderr) {
		t.Error("full stderr embedded in message")
	}
	if !strings.Contains(msg, "exit=1") {
		t.Errorf("message %q missing exit code", msg)
	}
	if err.Stderr != stderr {
		t.Error("Stderr field truncated; only the message should be")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("blur_kernel", 54, "kernel size must be a positive odd integer")
	msg := err.Error()
	if !strings.Contains(msg, "blur_kernel") || !strings.Contains(msg, "54") {
		t.Errorf("message = %q", msg)
	}
}
