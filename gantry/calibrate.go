package gantry

import (
	"fmt"
	"time"

	"github.com/techit45/Lisa-Smart-Farm/hw"
)

// CalState names a calibration state machine state.
type CalState int

// Calibration proceeds X fully before Y; the axes share one mechanical
// frame and are never homed concurrently.
const (
	Uncalibrated CalState = iota
	HomingX
	MeasuringX
	HomingY
	MeasuringY
	Calibrated
	Failed
)

func (s CalState) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case HomingX:
		return "homing X"
	case MeasuringX:
		return "measuring X"
	case HomingY:
		return "homing Y"
	case MeasuringY:
		return "measuring Y"
	case Calibrated:
		return "calibrated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("CalState(%d)", int(s))
	}
}

// ErrCalibrationTimeout is generated when a limit switch does not trigger
// within the homing timeout during a calibration phase.
type ErrCalibrationTimeout struct {
	Phase CalState
}

func (e ErrCalibrationTimeout) Error() string {
	return fmt.Sprintf("calibration timeout: limit switch never triggered while %s", e.Phase)
}

// Endstops holds the two limit switches of one axis.
type Endstops struct {
	// Home marks the zero end of the travel
	Home hw.DigitalIn

	// End marks the far end of the travel
	End hw.DigitalIn
}

// Calibrator drives both axes through homing and travel measurement.
// It is the sole blocking phase of the whole system: Calibrate
// monopolizes the caller until both axes are done or a phase times out.
type Calibrator struct {
	Clock    Clock
	Debounce Debouncer

	// Timeout bounds each blocking drive-to-switch phase; on expiry the
	// machine enters Failed instead of hanging on a dead switch.
	Timeout time.Duration

	state CalState
}

// NewCalibrator returns a Calibrator with the standard debounce and
// timeout.  A nil clock means wall time.
func NewCalibrator(clock Clock) *Calibrator {
	if clock == nil {
		clock = Wall
	}
	return &Calibrator{
		Clock:    clock,
		Debounce: NewDebouncer(clock),
		Timeout:  HomingTimeout,
	}
}

// State returns the current calibration state.
func (c *Calibrator) State() CalState {
	return c.state
}

// Calibrate homes and measures X, then Y.  On success both axes sit at
// zero with soft limits armed, run the operational profile, and
// st.Calibrated is true.  On timeout the machine is left in Failed,
// st.Calibrated stays false, and the error reports the phase.
//
// Calibrate always transitions through Uncalibrated first, so it serves
// both startup and recalibration.
func (c *Calibrator) Calibrate(st *State, x, y Endstops) error {
	c.state = Uncalibrated
	st.Calibrated = false
	st.CurrentTargetSlot = 0

	if err := c.calibrateAxis(st.X, x, HomingX, MeasuringX); err != nil {
		c.state = Failed
		return err
	}
	if err := c.calibrateAxis(st.Y, y, HomingY, MeasuringY); err != nil {
		c.state = Failed
		return err
	}

	if err := st.X.SetProfile(Operational); err != nil {
		return err
	}
	if err := st.Y.SetProfile(Operational); err != nil {
		return err
	}
	st.Calibrated = true
	c.state = Calibrated
	return nil
}

func (c *Calibrator) calibrateAxis(ax *Axis, es Endstops, homing, measuring CalState) error {
	ax.stop()
	ax.clearTravel()
	if err := ax.SetProfile(Calibration); err != nil {
		return err
	}

	// seek the home switch, then declare zero there
	c.state = homing
	if err := c.driveToSwitch(ax, es.Home, -1); err != nil {
		return err
	}
	ax.zeroHere()

	// back off far enough to release the switch and re-zero at the
	// cleared point, so the measured travel never includes the switch's
	// engagement band
	ax.MoveAbs(HomeClearance)
	if err := c.runToTarget(ax); err != nil {
		return err
	}
	ax.zeroHere()

	// seek the end switch; the position there is the usable travel
	c.state = measuring
	if err := c.driveToSwitch(ax, es.End, 1); err != nil {
		return err
	}
	ax.setTravel(ax.Position())

	ax.MoveAbs(0)
	return c.runToTarget(ax)
}

// driveToSwitch runs the axis at calibration speed in the given direction
// until the switch debounces active, then stops on the spot.
func (c *Calibrator) driveToSwitch(ax *Axis, sw hw.DigitalIn, dir int) error {
	deadline := c.Clock.Now().Add(c.Timeout)
	ax.MoveAbs(ax.Position() + dir*overdrive)
	for !c.Debounce.Pressed(sw) {
		if c.Clock.Now().After(deadline) {
			ax.stop()
			return ErrCalibrationTimeout{Phase: c.state}
		}
		if !ax.Advance() {
			c.Clock.Sleep(pollInterval)
		}
	}
	ax.stop()
	return nil
}

// runToTarget advances the axis until the pending move completes.
func (c *Calibrator) runToTarget(ax *Axis) error {
	deadline := c.Clock.Now().Add(c.Timeout)
	for ax.DistanceRemaining() != 0 {
		if c.Clock.Now().After(deadline) {
			ax.stop()
			return ErrCalibrationTimeout{Phase: c.state}
		}
		if !ax.Advance() {
			c.Clock.Sleep(pollInterval)
		}
	}
	return nil
}
