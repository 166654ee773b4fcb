/*Package gantry implements the two-axis positioning core of the smart farm
controller: per-axis motion control, limit switch debouncing, the homing and
travel-measurement calibration sequence, and the cooperative control loop's
shared state.

The package is single-threaded by contract.  One control flow owns every
Axis and the State record; Advance is called at high frequency by the
control loop and everything else executes in bounded time, except
calibration, which deliberately monopolizes the caller until both axes are
homed and measured.
*/
package gantry

import "time"

const (
	// StepsPerRev is the number of microsteps per output revolution of
	// the axis motors (200 full steps, 1/8 microstepping, 1:1 drive).
	StepsPerRev = 1600

	// HomeClearance is how far an axis backs away from the home switch
	// after tripping it, so the switch is mechanically released before
	// the travel measurement starts.
	HomeClearance = 200

	// DebounceSettle is the settle time between the two samples of a
	// limit switch read.
	DebounceSettle = 10 * time.Millisecond

	// HomingTimeout bounds each blocking calibration phase.  At
	// calibration speed this is several times the longest physical rail,
	// so expiry means a switch or motor fault, not a slow axis.
	HomingTimeout = 30 * time.Second

	// pollInterval is how long the calibration loops idle between step
	// attempts while waiting for the next step to come due.
	pollInterval = 100 * time.Microsecond

	// overdrive is the fictitious target used to drive an axis into a
	// limit switch; it is far beyond any physical rail.
	overdrive = 1 << 22
)

// Calibration is the slow constant-speed profile used while seeking limit
// switches.  No acceleration: the axis must be able to stop on a step.
var Calibration = Profile{MaxSpeed: 800}

// Operational is the fast profile used for normal slot and jog moves.
var Operational = Profile{MaxSpeed: 4000, Accel: 2000}

// Profile is a named pair of speed/acceleration motion parameters.
type Profile struct {
	// MaxSpeed is the speed ceiling in steps per second.
	MaxSpeed float64

	// Accel is the acceleration in steps per second squared.  Zero means
	// constant-speed motion at MaxSpeed.
	Accel float64
}

// Clock abstracts time for the motion and calibration code so tests can
// run the blocking calibration sequence against a virtual clock.
type Clock interface {
	Now() time.Time
	Sleep(time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Wall is the real-time Clock.
var Wall Clock = wallClock{}
