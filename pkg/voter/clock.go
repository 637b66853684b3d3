package voter

import "time"

// Clock abstracts wall-clock time so tests can control it without sleeping
// real time (SPEC_FULL §5 expansion). The worker only consults it for
// log annotations; none of the gadget's own logic (vote cadence, round
// thresholds) depends on wall time — those are purely block-number driven.
type Clock interface {
	Now() time.Time
}

// realClock is the default Clock, backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
