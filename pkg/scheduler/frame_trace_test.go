package scheduler

import (
	"testing"
	"time"
)

func TestFrameTraceBuffer_Defaults(t *testing.T) {
	b := NewFrameTraceBuffer(0, 0)
	if b.Capacity() != frameTraceSamplesDefault {
		t.Errorf("capacity = %d, want %d", b.Capacity(), frameTraceSamplesDefault)
	}
	if b.Threshold() != defaultFrameTraceThreshold {
		t.Errorf("threshold = %v", b.Threshold())
	}
	snap := b.Snapshot()
	if snap.Samples == nil || len(snap.Samples) != 0 {
		t.Errorf("empty snapshot should have an empty, non-nil sample list")
	}
}

func TestFrameTraceBuffer_WrapsChronologically(t *testing.T) {
	b := NewFrameTraceBuffer(3, 10*time.Millisecond)
	for i := int64(1); i <= 5; i++ {
		d := 5 * time.Millisecond
		if i%2 == 0 {
			d = 20 * time.Millisecond
		}
		b.Add(FrameSample{Seq: i}, d)
	}

	snap := b.Snapshot()
	if len(snap.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(snap.Samples))
	}
	for i, want := range []int64{3, 4, 5} {
		if snap.Samples[i].Seq != want {
			t.Errorf("sample %d seq = %d, want %d", i, snap.Samples[i].Seq, want)
		}
	}
	if snap.SlowFrames != 2 {
		t.Errorf("slow frames = %d, want 2", snap.SlowFrames)
	}
	if snap.ThresholdMs != 10 {
		t.Errorf("threshold ms = %v, want 10", snap.ThresholdMs)
	}
}
