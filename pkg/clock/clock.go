// Package clock provides the time source used by the core services.
package clock

import "time"

// System reads the wall clock in UTC.
type System struct{}

func NewSystem() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant. Intended for tests.
type Fixed struct {
	T time.Time
}

func NewFixed(t time.Time) Fixed {
	return Fixed{T: t}
}

func (f Fixed) Now() time.Time {
	return f.T
}
