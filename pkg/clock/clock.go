// Package clock abstracts time so cooldown and flush timing can be tested
package clock

import "time"

// SystemClock is the production clock backed by the standard library
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// After returns a channel that delivers the current time once d has elapsed
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
