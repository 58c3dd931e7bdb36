package model

// SilentVideo is the audio-less video artifact produced by the encode stage
// inside a job workspace. The mux stage consumes it; it never leaves the
// workspace except through the reattachment step.
type SilentVideo struct {
	Path string
}

// AudioTrack is the extracted audio artifact produced by the
// audio-extraction stage inside a job workspace.
type AudioTrack struct {
	Path string
}

// SourceInfo describes the decoded source stream geometry as reported by
// the codec bridge on open.
type SourceInfo struct {
	Width   int
	Height  int
	FPS     float64
	Frames  int // declared frame count; decode may stop earlier
	Bitrate int // bits per second; 0 when unknown
}
