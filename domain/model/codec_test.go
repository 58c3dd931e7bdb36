package model

import "testing"

func TestCodecTableLookup(t *testing.T) {
	table := DefaultCodecTable()

	tests := []struct {
		ext  string
		want string
	}{
		{".mp4", "libx264"},
		{".MP4", "libx264"},
		{".webm", "libvpx"},
		{".flv", "flv"},
		{".avi", "mpeg4"},
		{".ogv", "mpeg4"}, // unmapped falls back to the default entry
		{"", "mpeg4"},
	}
	for _, tt := range tests {
		if got := table.Lookup(tt.ext); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestTargetBitrate(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		source int
		want   int
	}{
		{"half of source", ".mp4", 4_000_000, 2_000_000},
		{"floored at minimum", ".mp4", 600_000, 500_000},
		{"unknown source", ".mp4", 0, 1_000_000},
		{"negative source treated as unknown", ".mp4", -1, 1_000_000},
		{"non-mp4 gets no hint", ".avi", 4_000_000, 0},
		{"case-insensitive extension", ".MP4", 4_000_000, 2_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetBitrate(tt.ext, tt.source); got != tt.want {
				t.Errorf("TargetBitrate(%q, %d) = %d, want %d", tt.ext, tt.source, got, tt.want)
			}
		})
	}
}
