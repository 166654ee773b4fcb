package gantry

import (
	"time"

	"github.com/techit45/Lisa-Smart-Farm/hw"
)

// Debouncer reads a limit switch reliably: an active first sample is
// confirmed by a second sample after a settle interval, so a single noise
// glitch never registers as a trip.
//
// Pressed blocks for the settle interval when the first sample is active.
// That is acceptable only inside the already-blocking calibration
// sequence; it must never be called from the per-loop Advance path.
type Debouncer struct {
	Clock  Clock
	Settle time.Duration
}

// NewDebouncer returns a Debouncer with the standard settle interval.
// A nil clock means wall time.
func NewDebouncer(clock Clock) Debouncer {
	if clock == nil {
		clock = Wall
	}
	return Debouncer{Clock: clock, Settle: DebounceSettle}
}

// Pressed reports whether the switch is genuinely active: both the
// immediate sample and a re-sample after the settle interval must agree.
func (d Debouncer) Pressed(sw hw.DigitalIn) bool {
	if !sw.Read() {
		return false
	}
	d.Clock.Sleep(d.Settle)
	return sw.Read()
}
