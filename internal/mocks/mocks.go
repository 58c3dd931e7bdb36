// Package mocks provides hand-written test doubles for the domain ports.
package mocks

import (
	"context"
	"encoding/json"
	"os"

	"vidredact/domain/model"
	"vidredact/domain/ports"
)

// FrameSource is a test double for ports.FrameSource, serving a scripted
// sequence of frames.
type FrameSource struct {
	InfoVal  model.SourceInfo
	Frames   [][]byte
	ReadErr  error // reported by Err after the frames run out
	Closed   bool
	CloseErr error

	next int
}

func (s *FrameSource) Info() model.SourceInfo { return s.InfoVal }

func (s *FrameSource) ReadFrame() ([]byte, bool) {
	if s.next >= len(s.Frames) {
		return nil, false
	}
	frame := make([]byte, len(s.Frames[s.next]))
	copy(frame, s.Frames[s.next])
	s.next++
	return frame, true
}

func (s *FrameSource) Err() error { return s.ReadErr }

func (s *FrameSource) Close() error {
	s.Closed = true
	return s.CloseErr
}

// FrameWriter is a test double for ports.FrameWriter. It records written
// frames and, when Path is set, materializes a file on Close so later
// stages can move or mux it.
type FrameWriter struct {
	Path     string
	Frames   [][]byte
	WriteErr error
	Closed   bool
}

func (w *FrameWriter) WriteFrame(frame []byte) error {
	if w.WriteErr != nil {
		return w.WriteErr
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	w.Frames = append(w.Frames, buf)
	return nil
}

func (w *FrameWriter) Close() error {
	w.Closed = true
	if w.Path == "" {
		return nil
	}
	var data []byte
	for _, f := range w.Frames {
		data = append(data, f...)
	}
	return os.WriteFile(w.Path, data, 0o644)
}

// FrameCodec is a test double for ports.FrameCodec.
type FrameCodec struct {
	OpenFunc         func(path string) (ports.FrameSource, error)
	CreateWriterFunc func(outputPath string, info model.SourceInfo) (ports.FrameWriter, error)

	OpenedPaths []string
	Writers     []*FrameWriter
}

func (c *FrameCodec) Open(path string) (ports.FrameSource, error) {
	c.OpenedPaths = append(c.OpenedPaths, path)
	if c.OpenFunc != nil {
		return c.OpenFunc(path)
	}
	return &FrameSource{InfoVal: model.SourceInfo{Width: 4, Height: 4, FPS: 30}}, nil
}

func (c *FrameCodec) CreateWriter(outputPath string, info model.SourceInfo) (ports.FrameWriter, error) {
	if c.CreateWriterFunc != nil {
		return c.CreateWriterFunc(outputPath, info)
	}
	w := &FrameWriter{Path: outputPath}
	c.Writers = append(c.Writers, w)
	return w, nil
}

// TranscodeExecutor is a test double for ports.TranscodeExecutor
type TranscodeExecutor struct {
	ExecuteFunc  func(ctx context.Context, args []string) (*ports.ToolResult, error)
	ProbeFunc    func(ctx context.Context, inputPath string) ([]byte, error)
	ExecutedArgs [][]string
}

func (m *TranscodeExecutor) Execute(ctx context.Context, args []string) (*ports.ToolResult, error) {
	m.ExecutedArgs = append(m.ExecutedArgs, args)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, args)
	}
	return &ports.ToolResult{ExitCode: 0}, nil
}

func (m *TranscodeExecutor) Probe(ctx context.Context, inputPath string) ([]byte, error) {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, inputPath)
	}
	return DefaultProbeResponse(), nil
}

// DefaultProbeResponse is an ffprobe JSON document declaring one video and
// one audio stream.
func DefaultProbeResponse() []byte {
	resp := map[string]interface{}{
		"format": map[string]interface{}{
			"duration":    "10.0",
			"bit_rate":    "2000000",
			"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
		},
		"streams": []map[string]interface{}{
			{"codec_type": "video", "codec_name": "h264"},
			{"codec_type": "audio", "codec_name": "aac"},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// AudioReattacher is a test double for ports.AudioReattacher. The default
// Reattach moves the silent artifact into place so the output file exists
// afterwards, like the real transcoder invocation would.
type AudioReattacher struct {
	ReattachFunc func(ctx context.Context, source model.VideoFile, silent model.SilentVideo, audio model.AudioTrack, outputPath string, policy model.ToolPolicy) error
	HasAudioFunc func(ctx context.Context, source model.VideoFile) (bool, error)

	ReattachCalls int
	LastPolicy    model.ToolPolicy
}

func (m *AudioReattacher) Reattach(ctx context.Context, source model.VideoFile, silent model.SilentVideo, audio model.AudioTrack, outputPath string, policy model.ToolPolicy) error {
	m.ReattachCalls++
	m.LastPolicy = policy
	if m.ReattachFunc != nil {
		return m.ReattachFunc(ctx, source, silent, audio, outputPath, policy)
	}
	return os.Rename(silent.Path, outputPath)
}

func (m *AudioReattacher) HasAudioStream(ctx context.Context, source model.VideoFile) (bool, error) {
	if m.HasAudioFunc != nil {
		return m.HasAudioFunc(ctx, source)
	}
	return true, nil
}
