package command

import (
	"math"

	"github.com/techit45/Lisa-Smart-Farm/gantry"
	"github.com/techit45/Lisa-Smart-Farm/relay"
	"github.com/techit45/Lisa-Smart-Farm/soil"
)

// Dispatcher routes well-formed command records against system state.  It
// holds no state of its own: validation reads the shared State record's
// Calibrated flag and slot, everything else is a call into the owning
// component.
type Dispatcher struct {
	State *gantry.State
	Cal   *gantry.Calibrator

	// EndstopsX and EndstopsY are needed to re-run calibration
	EndstopsX gantry.Endstops
	EndstopsY gantry.Endstops

	Relays *relay.Controller
	Soil   *soil.Reader
}

// HandleLine decodes one request line and dispatches it, returning the
// response line (no terminator).  Decode failures become error records;
// nothing is fatal.
func (d *Dispatcher) HandleLine(line []byte) []byte {
	cmd, err := ParseLine(line)
	if err != nil {
		return errResponse(err).Marshal()
	}
	return d.Dispatch(cmd).Marshal()
}

// Dispatch validates and executes one command, producing exactly one
// response record.  Recalibrate is the only call that blocks.
func (d *Dispatcher) Dispatch(cmd Command) Response {
	switch c := cmd.(type) {
	case Tree:
		return d.tree(c)
	case Pump:
		return d.pump(c)
	case Status:
		return d.status()
	case Home:
		return d.home()
	case Recalibrate:
		return d.recalibrate()
	case Move:
		return d.move(c)
	default:
		return errResponse(ErrUnknownCommand{Cmd: c.verb()})
	}
}

func (d *Dispatcher) tree(c Tree) Response {
	if !gantry.ValidSlot(c.ID) {
		return errResponse(ErrInvalidTreeID)
	}
	if !d.State.Calibrated {
		return errResponse(ErrNotCalibrated)
	}
	x, y := gantry.SlotSteps(c.ID, d.State.X.Travel(), d.State.Y.Travel())
	d.State.CurrentTargetSlot = c.ID
	d.State.X.MoveAbs(x)
	d.State.Y.MoveAbs(y)
	return Response{Status: "moving", Tree: c.ID}
}

func (d *Dispatcher) pump(c Pump) Response {
	var ch relay.Channel
	switch c.Type {
	case "water":
		ch = relay.Water
	case "fert":
		ch = relay.Fert
	default:
		return errResponse(ErrInvalidPumpType)
	}
	on, err := d.Relays.Toggle(ch)
	if err != nil {
		return errResponse(err)
	}
	return Response{Pump: c.Type, State: boolp(on)}
}

func (d *Dispatcher) status() Response {
	water, fert := d.Relays.States()
	return Response{
		Run:    boolp(d.State.Moving()),
		Soil:   d.Soil.ReadAll(),
		PWater: boolp(water),
		PFert:  boolp(fert),
	}
}

// home is deliberately not gated on calibration: moving to zero is a safe
// diagnostic on an unmeasured rig, unlike fractional slot positions.
func (d *Dispatcher) home() Response {
	d.State.X.MoveAbs(0)
	d.State.Y.MoveAbs(0)
	return Response{Status: "homing"}
}

func (d *Dispatcher) recalibrate() Response {
	if err := d.Cal.Calibrate(d.State, d.EndstopsX, d.EndstopsY); err != nil {
		return errResponse(err)
	}
	return Response{Status: "calibrated"}
}

// move is relative jogging in revolutions; like home it works without
// calibration.  Once calibrated, the axis soft limits bound the target.
func (d *Dispatcher) move(c Move) Response {
	sx := int(math.Round(c.RevsX * gantry.StepsPerRev))
	sy := int(math.Round(c.RevsY * gantry.StepsPerRev))
	d.State.X.MoveRel(sx)
	d.State.Y.MoveRel(sy)
	return Response{Status: "moving", StepsX: intp(sx), StepsY: intp(sy)}
}
