package ticket

import "time"

// Clock abstracts wall time and deferred execution so the close grace
// delay can be driven by tests instead of real sleeps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }
