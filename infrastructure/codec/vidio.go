// Package codec bridges the frame pipeline to the Vidio decode/encode
// backend. Decoder and writer handles are scoped acquisitions: the pipeline
// releases them on every exit path.
package codec

import (
	"path/filepath"

	vidio "github.com/AlexEidt/Vidio"

	"vidredact/domain/model"
	"vidredact/domain/ports"
	pkgerrors "vidredact/pkg/errors"
)

// Bridge implements ports.FrameCodec on top of Vidio.
type Bridge struct {
	codecs model.CodecTable
}

// NewBridge creates a codec bridge with the given encoder table. A nil
// table uses the defaults.
func NewBridge(codecs model.CodecTable) *Bridge {
	if codecs == nil {
		codecs = model.DefaultCodecTable()
	}
	return &Bridge{codecs: codecs}
}

// Open opens a source file for frame-sequential decoding.
func (b *Bridge) Open(path string) (ports.FrameSource, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, pkgerrors.NewProcessingError("open", "cannot open source", err)
	}
	return &source{video: video}, nil
}

// CreateWriter opens an encoder for outputPath. The encoder is selected by
// the output extension; the bitrate hint follows the .mp4 policy and is
// best-effort (some backends ignore it).
func (b *Bridge) CreateWriter(outputPath string, info model.SourceInfo) (ports.FrameWriter, error) {
	ext := filepath.Ext(outputPath)
	options := vidio.Options{
		FPS:     info.FPS,
		Codec:   b.codecs.Lookup(ext),
		Bitrate: model.TargetBitrate(ext, info.Bitrate),
	}

	w, err := vidio.NewVideoWriter(outputPath, info.Width, info.Height, &options)
	if err != nil {
		return nil, pkgerrors.NewProcessingError("encode", "cannot create video writer", err)
	}
	return &writer{writer: w}, nil
}

type source struct {
	video *vidio.Video
}

func (s *source) Info() model.SourceInfo {
	return model.SourceInfo{
		Width:   s.video.Width(),
		Height:  s.video.Height(),
		FPS:     s.video.FPS(),
		Frames:  s.video.Frames(),
		Bitrate: s.video.Bitrate(),
	}
}

// ReadFrame returns a copy of the next decoded frame. Vidio reuses its
// internal buffer between reads, so the copy is required for the frame to
// outlive the next ReadFrame call.
func (s *source) ReadFrame() ([]byte, bool) {
	if !s.video.Read() {
		return nil, false
	}
	buf := s.video.FrameBuffer()
	frame := make([]byte, len(buf))
	copy(frame, buf)
	return frame, true
}

// Err reports a decode read error distinct from clean end-of-stream. The
// Vidio backend collapses both into a stopped stream, so this always
// returns nil; early stops are detected by comparing frames read against
// the declared count.
func (s *source) Err() error { return nil }

func (s *source) Close() error {
	s.video.Close()
	return nil
}

type writer struct {
	writer *vidio.VideoWriter
}

func (w *writer) WriteFrame(frame []byte) error {
	if err := w.writer.Write(frame); err != nil {
		return pkgerrors.NewProcessingError("encode", "frame write failed", err)
	}
	return nil
}

func (w *writer) Close() error {
	w.writer.Close()
	return nil
}
