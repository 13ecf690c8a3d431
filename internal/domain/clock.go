package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Recency windows (carbon trend, activity heuristics) are judged against it.
// Production code uses the real clock; tests inject a fake for deterministic
// output.
var clock = clockwork.NewRealClock()

// Now returns the current assessment time from the active clock.
func Now() time.Time {
	return clock.Now()
}

// SetClock swaps the time source for assessments. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
