package driver

import "time"

// Clock is the source of real time for the driver loop.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// After returns a channel that receives the time after the duration elapsed.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
