package model

import "strings"

// CodecTable maps an output extension (lower-cased, dot-prefixed) to the
// encoder identifier handed to the video writer.
type CodecTable map[string]string

// DefaultCodecTable mirrors the supported container formats. Unmapped
// extensions fall back to the plain MPEG-4 encoder.
func DefaultCodecTable() CodecTable {
	return CodecTable{
		".mp4":  "libx264",
		".avi":  "mpeg4",
		".mov":  "mpeg4",
		".mkv":  "libx264",
		".flv":  "flv",
		".webm": "libvpx",
		".ts":   "libx264",
	}
}

const fallbackCodec = "mpeg4"

// Lookup returns the encoder for an extension, falling back to the default
// entry for unmapped extensions.
func (t CodecTable) Lookup(ext string) string {
	if codec, ok := t[strings.ToLower(ext)]; ok {
		return codec
	}
	return fallbackCodec
}

// Bitrate policy for .mp4 outputs: half the source bitrate floored at
// 500 kbit/s, or 1 Mbit/s when the source bitrate is unknown. Other
// containers get no bitrate hint. The hint is best-effort only; encoder
// backends may ignore it.
const (
	minMP4Bitrate     = 500_000
	defaultMP4Bitrate = 1_000_000
)

// TargetBitrate computes the bitrate hint for an output extension given the
// source bitrate. Returns 0 when no hint should be applied.
func TargetBitrate(ext string, sourceBitrate int) int {
	if strings.ToLower(ext) != ".mp4" {
		return 0
	}
	if sourceBitrate <= 0 {
		return defaultMP4Bitrate
	}
	if half := sourceBitrate / 2; half > minMP4Bitrate {
		return half
	}
	return minMP4Bitrate
}
