// Package relay controls the pump relays.  The boards are active-low:
// the coil energizes when the pin is driven low.  That wiring detail is
// confined here; everything above works in logical on/off.
package relay

import (
	"fmt"

	"github.com/techit45/Lisa-Smart-Farm/hw"
)

// Channel names one pump relay.
type Channel string

const (
	// Water is the irrigation pump
	Water Channel = "water"

	// Fert is the fertilizer dosing pump
	Fert Channel = "fert"
)

// ErrUnknownChannel is generated when a channel name does not match a
// wired relay.
type ErrUnknownChannel struct {
	Name string
}

func (e ErrUnknownChannel) Error() string {
	return fmt.Sprintf("unknown relay channel %q", e.Name)
}

type line struct {
	out hw.DigitalOut
	on  bool
}

// Controller owns the logical state of every pump relay.  Channels are
// toggled, never set absolutely, so two toggles always restore the
// original state.
type Controller struct {
	lines map[Channel]*line
}

// NewController returns a Controller over the two pump outputs, both off.
func NewController(water, fert hw.DigitalOut) *Controller {
	c := &Controller{lines: map[Channel]*line{
		Water: {out: water},
		Fert:  {out: fert},
	}}
	// drive both coils to the known off level
	for _, l := range c.lines {
		l.out.Set(true)
	}
	return c
}

// Toggle flips one relay and returns the resulting logical state.
func (c *Controller) Toggle(ch Channel) (bool, error) {
	l, ok := c.lines[ch]
	if !ok {
		return false, ErrUnknownChannel{Name: string(ch)}
	}
	l.on = !l.on
	l.out.Set(!l.on) // active-low
	return l.on, nil
}

// State returns the logical state of one relay.
func (c *Controller) State(ch Channel) bool {
	l, ok := c.lines[ch]
	if !ok {
		return false
	}
	return l.on
}

// States returns the water and fertilizer pump states.
func (c *Controller) States() (water, fert bool) {
	return c.State(Water), c.State(Fert)
}
