/*Package sim is a software gantry: virtual rails with limit switches,
relay pins, soil probes, and a virtual clock, all satisfying the hw
interfaces.  Tests and the demo daemon run the full calibration and
motion stack against it with no silicon attached.
*/
package sim

import (
	"sync"
	"time"
)

// Clock is a virtual clock: Sleep advances Now instantly, so a blocking
// calibration run finishes in microseconds of wall time.  It satisfies
// gantry.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock starting at an arbitrary epoch.
func NewClock() *Clock {
	return &Clock{now: time.Unix(0, 0)}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the virtual time by d without blocking.
func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// InFunc adapts a func to hw.DigitalIn.
type InFunc func() bool

// Read samples the input.
func (f InFunc) Read() bool { return f() }

// Pin is a recording digital output.
type Pin struct {
	// Level is the electrical level last driven
	Level bool
}

// Set drives the pin.
func (p *Pin) Set(level bool) { p.Level = level }

// Probe is a settable analog input.
type Probe struct {
	// Raw is the converter code the probe reads back
	Raw int
}

// Read returns the raw code.
func (p *Probe) Read() int { return p.Raw }

// Rail is one axis worth of mechanics: a carriage on a rail with a limit
// switch at each end.  Positions are in steps from the home switch trip
// point.  It satisfies hw.StepDriver.
type Rail struct {
	// Travel is the distance in steps between the two switch trip points
	Travel int

	pos int
}

// NewRail returns a Rail with the carriage parked at start steps from the
// home trip point.
func NewRail(travel, start int) *Rail {
	return &Rail{Travel: travel, pos: start}
}

// Step moves the carriage one step; dir true is away from home.
func (r *Rail) Step(dir bool) {
	if dir {
		r.pos++
	} else {
		r.pos--
	}
}

// Position returns the carriage position relative to the home trip point.
func (r *Rail) Position() int { return r.pos }

// HomeSwitch returns the input for the home-side limit switch, active
// whenever the carriage is at or past the trip point.
func (r *Rail) HomeSwitch() InFunc {
	return func() bool { return r.pos <= 0 }
}

// EndSwitch returns the input for the far limit switch.
func (r *Rail) EndSwitch() InFunc {
	return func() bool { return r.pos >= r.Travel }
}

// DeadSwitch is an input that never goes active, for exercising the
// calibration timeout path.
var DeadSwitch = InFunc(func() bool { return false })

// Rig is the complete simulated machine.
type Rig struct {
	Clock *Clock
	X     *Rail
	Y     *Rail
	Water *Pin
	Fert  *Pin
	Soil  [3]*Probe
}

// NewRig returns a Rig with plausible smart farm geometry: an 18000 step
// X rail, a 12000 step Y rail, the carriage parked off-home on both, and
// three soil probes reading mid-range.
func NewRig() *Rig {
	return &Rig{
		Clock: NewClock(),
		X:     NewRail(18000, 2500),
		Y:     NewRail(12000, 1800),
		Water: &Pin{Level: true}, // relays are active-low; idle is high
		Fert:  &Pin{Level: true},
		Soil:  [3]*Probe{{Raw: 2200}, {Raw: 2600}, {Raw: 1900}},
	}
}
