package model

import "testing"

func TestNewVideoFile(t *testing.T) {
	v := NewVideoFile("/videos/Clip.MP4")
	if v.Path != "/videos/Clip.MP4" {
		t.Errorf("Path = %q", v.Path)
	}
	if v.Ext != ".mp4" {
		t.Errorf("Ext = %q, want lower-cased .mp4", v.Ext)
	}
	if v.Name() != "Clip.MP4" {
		t.Errorf("Name() = %q", v.Name())
	}
}

func TestRegionFitsWithin(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		w, h   int
		want   bool
	}{
		{"inside", Region{X: 10, Y: 10, Width: 20, Height: 20}, 100, 100, true},
		{"exact fit", Region{X: 0, Y: 0, Width: 100, Height: 100}, 100, 100, true},
		{"touches right edge", Region{X: 80, Y: 0, Width: 20, Height: 50}, 100, 100, true},
		{"exceeds width", Region{X: 90, Y: 0, Width: 20, Height: 20}, 100, 100, false},
		{"exceeds height", Region{X: 0, Y: 90, Width: 20, Height: 20}, 100, 100, false},
		{"negative x", Region{X: -1, Y: 0, Width: 20, Height: 20}, 100, 100, false},
		{"negative y", Region{X: 0, Y: -1, Width: 20, Height: 20}, 100, 100, false},
		{"zero width", Region{X: 0, Y: 0, Width: 0, Height: 20}, 100, 100, false},
		{"zero height", Region{X: 0, Y: 0, Width: 20, Height: 0}, 100, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.FitsWithin(tt.w, tt.h); got != tt.want {
				t.Errorf("FitsWithin(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestBlurParamsEffectiveSigma(t *testing.T) {
	if got := (BlurParams{Kernel: 55, Sigma: 3}).EffectiveSigma(); got != 3 {
		t.Errorf("explicit sigma: got %v, want 3", got)
	}

	// Sigma 0 follows the OpenCV derivation from the kernel size.
	got := (BlurParams{Kernel: 55, Sigma: 0}).EffectiveSigma()
	want := 0.3*((55.0-1)*0.5-1) + 0.8
	if got != want {
		t.Errorf("derived sigma: got %v, want %v", got, want)
	}
	if got <= 0 {
		t.Errorf("derived sigma must be positive, got %v", got)
	}
}

func TestJobResultSucceeded(t *testing.T) {
	if !(JobResult{State: StateDone}).Succeeded() {
		t.Error("done job should report success")
	}
	if (JobResult{State: StateFailed}).Succeeded() {
		t.Error("failed job should not report success")
	}
}
