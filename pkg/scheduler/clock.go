package scheduler

import "time"

// Clock provides time for frame budgets and trace samples. The default
// implementation uses system time; tests inject a fake clock through
// Config.Clock to control budgets deterministically.
type Clock interface {
	Now() time.Time
}

// realClock uses system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return realClock{}
}
