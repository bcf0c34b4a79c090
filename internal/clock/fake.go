package clock

import (
	"sync"
	"time"
)

// Fake is a virtual clock.  Time only moves when Advance is called, and
// scheduled functions run synchronously on the caller's goroutine.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*fakeTask
}

type fakeTask struct {
	period  time.Duration
	next    time.Time
	fn      func() bool
	stopped bool
}

// NewFake returns a Fake clock that starts at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the virtual time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Every registers fn to run each period of virtual time.
func (f *Fake) Every(period time.Duration, fn func() bool) func() {
	f.mu.Lock()
	t := &fakeTask{period: period, next: f.now.Add(period), fn: fn}
	f.tasks = append(f.tasks, t)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		t.stopped = true
		f.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing every due task in time
// order.  Tasks may stop themselves or other tasks while firing.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()
	for {
		f.mu.Lock()
		var due *fakeTask
		for _, t := range f.tasks {
			if t.stopped || t.next.After(target) {
				continue
			}
			if due == nil || t.next.Before(due.next) {
				due = t
			}
		}
		if due == nil {
			f.now = target
			f.prune()
			f.mu.Unlock()
			return
		}
		f.now = due.next
		due.next = due.next.Add(due.period)
		fn := due.fn
		f.mu.Unlock()

		if !fn() {
			f.mu.Lock()
			due.stopped = true
			f.mu.Unlock()
		}
	}
}

// Pending reports how many tasks are still scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (f *Fake) prune() {
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	f.tasks = kept
}
