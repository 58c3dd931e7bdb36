package progress

import (
	"testing"
	"time"
)

type recordingReporter struct {
	updates []Update
}

func (r *recordingReporter) Report(u Update) { r.updates = append(r.updates, u) }

func TestChannelReporterDelivers(t *testing.T) {
	ch := make(chan Update, 1)
	r := NewChannelReporter(ch)

	r.Report(Update{Stage: StageDecode, Message: "opening source"})

	select {
	case got := <-ch:
		if got.Stage != StageDecode {
			t.Errorf("stage = %s, want decode", got.Stage)
		}
	default:
		t.Fatal("update not delivered")
	}
}

func TestChannelReporterDropsWhenFull(t *testing.T) {
	ch := make(chan Update) // unbuffered, no receiver
	r := NewChannelReporter(ch)

	done := make(chan struct{})
	go func() {
		r.Report(Update{Stage: StageTransform})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked on a full channel")
	}
}

func TestMultiReporterFansOut(t *testing.T) {
	a := &recordingReporter{}
	b := &recordingReporter{}
	m := NewMultiReporter(a, b)

	m.Report(Update{Stage: StageDiscover, Message: "3 candidate files"})

	c := &recordingReporter{}
	m.Add(c)
	m.Report(Update{Stage: StageDone})

	if len(a.updates) != 2 || len(b.updates) != 2 {
		t.Errorf("initial reporters got %d/%d updates, want 2/2", len(a.updates), len(b.updates))
	}
	if len(c.updates) != 1 {
		t.Errorf("added reporter got %d updates, want 1", len(c.updates))
	}
	if a.updates[0].Stage != StageDiscover {
		t.Errorf("first stage = %s, want discover", a.updates[0].Stage)
	}
}

func TestNoopReporterDiscards(t *testing.T) {
	NoopReporter{}.Report(Update{Stage: StageEncode}) // must not panic
}
