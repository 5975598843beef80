package ports

import "time"

// Clock supplies the current time. Injected everywhere "now" participates in
// overdue math so tests can pin it.
type Clock interface {
	Now() time.Time
}
