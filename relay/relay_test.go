package relay_test

import (
	"errors"
	"testing"

	"github.com/techit45/Lisa-Smart-Farm/relay"
	"github.com/techit45/Lisa-Smart-Farm/sim"
)

func TestNewControllerDrivesCoilsOff(t *testing.T) {
	water, fert := &sim.Pin{}, &sim.Pin{}
	relay.NewController(water, fert)
	// active-low: off is high
	if !water.Level || !fert.Level {
		t.Errorf("coils at (%v, %v), want both high", water.Level, fert.Level)
	}
}

func TestToggleActiveLow(t *testing.T) {
	water, fert := &sim.Pin{}, &sim.Pin{}
	c := relay.NewController(water, fert)

	on, err := c.Toggle(relay.Water)
	if err != nil {
		t.Fatal(err)
	}
	if !on {
		t.Error("first toggle should turn the pump on")
	}
	if water.Level {
		t.Error("on state should drive the coil low")
	}
	if fert.Level != true {
		t.Error("toggling water must not touch the fertilizer coil")
	}

	on, err = c.Toggle(relay.Water)
	if err != nil {
		t.Fatal(err)
	}
	if on || !water.Level {
		t.Error("second toggle should restore off, coil high")
	}
}

func TestStates(t *testing.T) {
	c := relay.NewController(&sim.Pin{}, &sim.Pin{})
	c.Toggle(relay.Fert)
	water, fert := c.States()
	if water || !fert {
		t.Errorf("states = (%v, %v), want water off and fert on", water, fert)
	}
}

func TestToggleUnknownChannel(t *testing.T) {
	c := relay.NewController(&sim.Pin{}, &sim.Pin{})
	_, err := c.Toggle(relay.Channel("steam"))
	var unknown relay.ErrUnknownChannel
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownChannel, got %v", err)
	}
	if unknown.Name != "steam" {
		t.Errorf("error names %q, want steam", unknown.Name)
	}
}
