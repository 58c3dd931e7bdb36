package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors
type ErrorCode string

const (
	ErrCodeProcessing ErrorCode = "PROCESSING_ERROR"
	ErrCodeFFmpeg     ErrorCode = "FFMPEG_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeRegion     ErrorCode = "REGION_ERROR"
	ErrCodeIO         ErrorCode = "IO_ERROR"
	ErrCodeTimeout    ErrorCode = "TIMEOUT_ERROR"
	ErrCodeCanceled   ErrorCode = "CANCELED_ERROR"
)

// RedactError is the base structured error
type RedactError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Fields  map[string]interface{}
}

func (e *RedactError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *RedactError) Unwrap() error {
	return e.Cause
}

// ProcessingError represents a failure in a named pipeline stage
type ProcessingError struct {
	RedactError
	Stage string
}

func NewProcessingError(stage, message string, cause error) *ProcessingError {
	return &ProcessingError{
		RedactError: RedactError{
			Code:    ErrCodeProcessing,
			Message: message,
			Cause:   cause,
		},
		Stage: stage,
	}
}

func (e *ProcessingError) Error() string {
	base := e.RedactError.Error()
	return fmt.Sprintf("%s (stage=%s)", base, e.Stage)
}

// FFmpegError represents an external transcoder execution failure
type FFmpegError struct {
	RedactError
	Args     []string
	ExitCode int
	Stderr   string
}

func NewFFmpegError(message string, args []string, exitCode int, stderr string, cause error) *FFmpegError {
	return &FFmpegError{
		RedactError: RedactError{
			Code:    ErrCodeFFmpeg,
			Message: message,
			Cause:   cause,
		},
		Args:     args,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("[%s] %s (exit=%d, stderr=%q): %v",
		e.Code, e.Message, e.ExitCode, truncate(e.Stderr, 200), e.Cause)
}

// RegionError represents a redaction region that does not fit inside the
// frame. Carries the actual frame dimensions for diagnostics.
type RegionError struct {
	RedactError
	X, Y          int
	Width, Height int
	FrameWidth    int
	FrameHeight   int
}

func NewRegionError(x, y, w, h, frameW, frameH int) *RegionError {
	return &RegionError{
		RedactError: RedactError{
			Code:    ErrCodeRegion,
			Message: "region out of bounds",
		},
		X: x, Y: y, Width: w, Height: h,
		FrameWidth:  frameW,
		FrameHeight: frameH,
	}
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("[%s] %s: region %dx%d+%d+%d exceeds frame %dx%d",
		e.Code, e.Message, e.Width, e.Height, e.X, e.Y, e.FrameWidth, e.FrameHeight)
}

// ValidationError represents input validation failure
type ValidationError struct {
	RedactError
	Field string
	Value interface{}
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		RedactError: RedactError{
			Code:    ErrCodeValidation,
			Message: message,
		},
		Field: field,
		Value: value,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] field=%s value=%v: %s", e.Code, e.Field, e.Value, e.Message)
}

// Is enables errors.Is checks
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As enables errors.As checks
func As[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
