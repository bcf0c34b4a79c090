// Package clock abstracts wall-clock time so that hold timers can be
// driven by a virtual clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time and schedules repeating work.
//
// Every calls fn once per period until fn returns false or the returned
// stop function is called.  Stop is idempotent.  Once stop returns, no
// call to fn is in flight and none will start.  Stop must not be called
// from inside fn.
type Clock interface {
	Now() time.Time
	Every(period time.Duration, fn func() bool) (stop func())
}

// Real is the wall clock.
type Real struct{}

// Now returns time.Now in UTC.
func (Real) Now() time.Time { return time.Now().UTC() }

// Every runs fn on its own goroutine driven by a time.Ticker.
func (Real) Every(period time.Duration, fn func() bool) func() {
	t := time.NewTicker(period)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				// a stop may race with a tick that already fired
				select {
				case <-done:
					return
				default:
				}
				if !fn() {
					return
				}
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
