package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFakeAdvanceFiresEachPeriod(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)
	ticks := 0
	f.Every(time.Second, func() bool { ticks++; return true })

	f.Advance(500 * time.Millisecond)
	if ticks != 0 {
		t.Fatalf("ticks after 0.5s = %d, want 0", ticks)
	}
	f.Advance(3 * time.Second)
	if ticks != 3 {
		t.Fatalf("ticks after 3.5s = %d, want 3", ticks)
	}
	if got := f.Now(); !got.Equal(start.Add(3500 * time.Millisecond)) {
		t.Fatalf("Now = %v", got)
	}
}

func TestFakeStopAndSelfCancel(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	a, b := 0, 0
	stopA := f.Every(time.Second, func() bool { a++; return true })
	f.Every(time.Second, func() bool { b++; return b < 2 })

	f.Advance(time.Second)
	stopA()
	f.Advance(5 * time.Second)

	if a != 1 {
		t.Errorf("a = %d, want 1", a)
	}
	if b != 2 {
		t.Errorf("b = %d, want 2", b)
	}
	if n := f.Pending(); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}

func TestRealStopBlocksFurtherTicks(t *testing.T) {
	var n atomic.Int32
	stop := Real{}.Every(time.Millisecond, func() bool { n.Add(1); return true })
	time.Sleep(20 * time.Millisecond)
	stop()
	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	if n.Load() != after {
		t.Fatalf("tick delivered after stop: %d -> %d", after, n.Load())
	}
	stop() // idempotent
}
