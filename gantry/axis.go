package gantry

import (
	"errors"
	"math"
	"time"

	"github.com/techit45/Lisa-Smart-Farm/hw"
	"github.com/techit45/Lisa-Smart-Farm/util"
)

// ErrAxisMoving is generated when a profile change is requested while the
// axis still has distance to run.  Profile swaps only happen at rest so
// the speed ramp never jumps discontinuously.
var ErrAxisMoving = errors.New("axis is in motion, profile can only change at rest")

// Axis owns the motion state of one physical axis: the commanded target,
// the live position, the active speed profile, and the calibrated travel
// length once measured.  All positions are in steps.
//
// Axis is not safe for concurrent use; the control loop is its only
// caller.
type Axis struct {
	drv   hw.StepDriver
	clock Clock

	profile Profile

	position int
	target   int

	// speed is the current speed magnitude in steps/s; zero at rest
	speed    float64
	nextStep time.Time

	travel int
	limits *util.Limiter
}

// NewAxis returns an Axis driving drv.  A nil clock means wall time.
func NewAxis(drv hw.StepDriver, clock Clock) *Axis {
	if clock == nil {
		clock = Wall
	}
	return &Axis{drv: drv, clock: clock, profile: Calibration}
}

// MoveAbs sets the commanded target, replacing any target still in
// flight.  It does not block; motion happens across subsequent Advance
// calls.  Once the axis is calibrated the target is clamped to the
// measured travel.
func (a *Axis) MoveAbs(steps int) {
	a.target = a.clamp(steps)
}

// MoveRel adds steps to the commanded target.  Unlike MoveAbs this
// compounds with motion still in progress rather than cancelling it: two
// queued +100 jogs land 200 steps away.
func (a *Axis) MoveRel(steps int) {
	a.target = a.clamp(a.target + steps)
}

// DistanceRemaining returns target - position.
func (a *Axis) DistanceRemaining() int {
	return a.target - a.position
}

// Position returns the current position.
func (a *Axis) Position() int {
	return a.position
}

// Travel returns the calibrated travel length, zero before calibration.
func (a *Axis) Travel() int {
	return a.travel
}

// SetProfile swaps the active speed/acceleration profile.  The axis must
// be at rest.
func (a *Axis) SetProfile(p Profile) error {
	if a.DistanceRemaining() != 0 {
		return ErrAxisMoving
	}
	a.profile = p
	a.speed = 0
	return nil
}

// Advance moves the physical output at most one step toward the target,
// respecting the active profile's speed ramp.  It returns true if a step
// was emitted.  Advance never blocks; when called before the next step is
// due it returns false immediately.
func (a *Axis) Advance() bool {
	if a.position == a.target {
		a.speed = 0
		return false
	}
	now := a.clock.Now()
	if now.Before(a.nextStep) {
		return false
	}
	dir := a.target > a.position
	a.drv.Step(dir)
	if dir {
		a.position++
	} else {
		a.position--
	}
	a.ramp()
	a.nextStep = now.Add(time.Duration(float64(time.Second) / a.speed))
	return true
}

// ramp updates the speed for the step just taken: accelerate until the
// ceiling or until the remaining distance equals the stopping distance,
// then decelerate.  With no acceleration configured the axis runs at the
// profile ceiling outright.
func (a *Axis) ramp() {
	p := a.profile
	if p.Accel <= 0 {
		a.speed = p.MaxSpeed
		return
	}
	// v^2 = 2*a*d: the slowest speed is the speed one step from rest
	floor := math.Sqrt(2 * p.Accel)
	if a.speed < floor {
		a.speed = floor
		return
	}
	remaining := a.target - a.position
	if remaining < 0 {
		remaining = -remaining
	}
	stopping := a.speed * a.speed / (2 * p.Accel)
	if float64(remaining) <= stopping {
		a.speed -= p.Accel / a.speed
		if a.speed < floor {
			a.speed = floor
		}
		return
	}
	a.speed += p.Accel / a.speed
	if a.speed > p.MaxSpeed {
		a.speed = p.MaxSpeed
	}
}

// stop cancels motion in place, making the current position the target.
func (a *Axis) stop() {
	a.target = a.position
	a.speed = 0
}

// zeroHere declares the current position to be zero.
func (a *Axis) zeroHere() {
	a.position = 0
	a.target = 0
}

// setTravel records the measured travel length and arms the soft limits.
func (a *Axis) setTravel(steps int) {
	a.travel = steps
	a.limits = &util.Limiter{Min: 0, Max: float64(steps)}
}

// clearTravel drops the travel length and soft limits ahead of a
// recalibration, which must be free to overdrive past the rails.
func (a *Axis) clearTravel() {
	a.travel = 0
	a.limits = nil
}

func (a *Axis) clamp(steps int) int {
	if a.limits == nil {
		return steps
	}
	return int(a.limits.Clamp(float64(steps)))
}
