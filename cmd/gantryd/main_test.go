package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/techit45/Lisa-Smart-Farm/command"
	"github.com/techit45/Lisa-Smart-Farm/gantry"
	"github.com/techit45/Lisa-Smart-Farm/relay"
	"github.com/techit45/Lisa-Smart-Farm/sim"
	"github.com/techit45/Lisa-Smart-Farm/soil"
)

func testDispatcher() *command.Dispatcher {
	rig := sim.NewRig()
	st := &gantry.State{
		X: gantry.NewAxis(rig.X, rig.Clock),
		Y: gantry.NewAxis(rig.Y, rig.Clock),
	}
	return &command.Dispatcher{
		State:     st,
		Cal:       gantry.NewCalibrator(rig.Clock),
		EndstopsX: gantry.Endstops{Home: rig.X.HomeSwitch(), End: rig.X.EndSwitch()},
		EndstopsY: gantry.Endstops{Home: rig.Y.HomeSwitch(), End: rig.Y.EndSwitch()},
		Relays:    relay.NewController(rig.Water, rig.Fert),
		Soil:      soil.NewReader(rig.Soil[0], rig.Soil[1], rig.Soil[2]),
	}
}

// roundTrip dials the daemon, performs one status exchange, and hangs up.
func roundTrip(t *testing.T, addr string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(conn, "{\"cmd\": \"status\"}\n"); err != nil {
		t.Fatalf("send: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	return line
}

func TestAcceptLoopServesSequentialClients(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go acceptLoop(ln, testDispatcher())

	// the same listener answers client after client; the port is never
	// released between them
	for i := 0; i < 3; i++ {
		line := roundTrip(t, ln.Addr().String())
		if !strings.Contains(line, `"run":false`) {
			t.Fatalf("client %d: unexpected status %q", i, line)
		}
	}
}
