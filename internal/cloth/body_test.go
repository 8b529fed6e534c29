package cloth

import (
	"math"
	"sync"
	"testing"
)

func TestBodyBufferEmpty(t *testing.T) {
	b := NewBodyBuffer()
	got, seq := b.Snapshot(nil)
	if seq != 0 || len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d landmarks seq %d", len(got), seq)
	}
}

func TestBodyBufferCopies(t *testing.T) {
	b := NewBodyBuffer()
	src := []Vec3{{1, 2, 3}, {4, 5, 6}}
	b.Publish(src)
	src[0] = Vec3{9, 9, 9}

	got, seq := b.Snapshot(nil)
	if seq != 1 {
		t.Errorf("expected seq 1, got %d", seq)
	}
	if got[0] != (Vec3{1, 2, 3}) {
		t.Errorf("publish must copy, got %v", got[0])
	}
	got[1] = Vec3{}
	again, _ := b.Snapshot(nil)
	if again[1] != (Vec3{4, 5, 6}) {
		t.Errorf("snapshot must copy, got %v", again[1])
	}
}

func TestBodyBufferConsistentFrames(t *testing.T) {
	b := NewBodyBuffer()
	const frames = 2000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		frame := make([]Vec3, NumLandmarks)
		for k := 1; k <= frames; k++ {
			for i := range frame {
				frame[i] = Vec3{float64(k), float64(k), float64(k)}
			}
			b.Publish(frame)
		}
	}()

	var buf []Vec3
	var last uint64
	for last < frames {
		var seq uint64
		buf, seq = b.Snapshot(buf)
		if seq < last {
			t.Fatalf("sequence went backwards: %d after %d", seq, last)
		}
		last = seq
		if len(buf) == 0 {
			continue
		}
		v := buf[0]
		for i, p := range buf {
			if p != v {
				t.Fatalf("torn frame at seq %d: landmark %d is %v, expected %v", seq, i, p, v)
			}
		}
		if v.X() != float64(seq) {
			t.Fatalf("frame content %v does not match seq %d", v, seq)
		}
	}
	wg.Wait()
}

func TestLandmarkAt(t *testing.T) {
	b := body(map[Landmark]Vec3{Nose: {0, 1.7, 0}})
	if p, ok := LandmarkAt(b, Nose); !ok || p != (Vec3{0, 1.7, 0}) {
		t.Errorf("expected nose landmark, got %v %v", p, ok)
	}
	for _, l := range []Landmark{LeftShoulder, NoAnchor, NumLandmarks} {
		if _, ok := LandmarkAt(b, l); ok {
			t.Errorf("landmark %d should be missing", l)
		}
	}
	if Finite(Vec3{0, math.Inf(-1), 0}) || !Finite(Vec3{1, 2, 3}) {
		t.Error("Finite misreports")
	}
}
