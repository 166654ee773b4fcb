package command_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/techit45/Lisa-Smart-Farm/command"
	"github.com/techit45/Lisa-Smart-Farm/gantry"
	"github.com/techit45/Lisa-Smart-Farm/relay"
	"github.com/techit45/Lisa-Smart-Farm/sim"
	"github.com/techit45/Lisa-Smart-Farm/soil"
)

// harness is a dispatcher wired to a full simulated rig.
type harness struct {
	disp *command.Dispatcher
	rig  *sim.Rig
}

func newHarness() *harness {
	rig := sim.NewRig()
	st := &gantry.State{
		X: gantry.NewAxis(rig.X, rig.Clock),
		Y: gantry.NewAxis(rig.Y, rig.Clock),
	}
	disp := &command.Dispatcher{
		State:     st,
		Cal:       gantry.NewCalibrator(rig.Clock),
		EndstopsX: gantry.Endstops{Home: rig.X.HomeSwitch(), End: rig.X.EndSwitch()},
		EndstopsY: gantry.Endstops{Home: rig.Y.HomeSwitch(), End: rig.Y.EndSwitch()},
		Relays:    relay.NewController(rig.Water, rig.Fert),
		Soil:      soil.NewReader(rig.Soil[0], rig.Soil[1], rig.Soil[2]),
	}
	return &harness{disp: disp, rig: rig}
}

func (h *harness) calibrate(t *testing.T) {
	t.Helper()
	resp := h.disp.Dispatch(command.Recalibrate{})
	if resp.Error != "" {
		t.Fatalf("calibration failed: %s", resp.Error)
	}
}

// settle runs both axes to rest.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	st := h.disp.State
	for i := 0; st.Moving(); i++ {
		if i > 10_000_000 {
			t.Fatal("axes never came to rest")
		}
		x := st.X.Advance()
		y := st.Y.Advance()
		if !x && !y {
			h.rig.Clock.Sleep(100 * time.Microsecond)
		}
	}
}

func TestTreeGatedOnCalibration(t *testing.T) {
	h := newHarness()
	resp := h.disp.Dispatch(command.Tree{ID: 5})
	if resp.Error != "Not calibrated" {
		t.Errorf("error = %q, want %q", resp.Error, "Not calibrated")
	}
	if h.disp.State.Moving() {
		t.Error("a rejected tree command started motion")
	}
}

func TestTreeInvalidID(t *testing.T) {
	h := newHarness()
	// the id range check wins even before calibration
	for _, id := range []int{0, 10, -3} {
		resp := h.disp.Dispatch(command.Tree{ID: id})
		if resp.Error != "Invalid tree id" {
			t.Errorf("id %d: error = %q, want %q", id, resp.Error, "Invalid tree id")
		}
	}
}

func TestTreeMovesToSlot(t *testing.T) {
	h := newHarness()
	h.calibrate(t)
	resp := h.disp.Dispatch(command.Tree{ID: 5})
	if resp.Error != "" {
		t.Fatalf("tree command failed: %s", resp.Error)
	}
	if resp.Status != "moving" || resp.Tree != 5 {
		t.Errorf("response = %+v, want status moving for tree 5", resp)
	}
	if h.disp.State.CurrentTargetSlot != 5 {
		t.Errorf("current target slot = %d, want 5", h.disp.State.CurrentTargetSlot)
	}
	h.settle(t)
	st := h.disp.State
	if got, want := st.X.Position(), st.X.Travel()/2; got != want {
		t.Errorf("center slot X = %d, want %d", got, want)
	}
	if got, want := st.Y.Position(), st.Y.Travel()/2; got != want {
		t.Errorf("center slot Y = %d, want %d", got, want)
	}
}

func TestTreeOverwritesPendingSlotMove(t *testing.T) {
	h := newHarness()
	h.calibrate(t)
	h.disp.Dispatch(command.Tree{ID: 9})
	// redirect before the first move finishes
	h.disp.Dispatch(command.Tree{ID: 1})
	h.settle(t)
	st := h.disp.State
	wantX, wantY := gantry.SlotSteps(1, st.X.Travel(), st.Y.Travel())
	if st.X.Position() != wantX || st.Y.Position() != wantY {
		t.Errorf("landed at (%d, %d), want slot 1 at (%d, %d)",
			st.X.Position(), st.Y.Position(), wantX, wantY)
	}
	if st.CurrentTargetSlot != 1 {
		t.Errorf("current target slot = %d, want 1", st.CurrentTargetSlot)
	}
}

func TestPumpToggleRoundTrip(t *testing.T) {
	h := newHarness()
	resp := h.disp.Dispatch(command.Pump{Type: "water"})
	if resp.Pump != "water" || resp.State == nil || !*resp.State {
		t.Fatalf("first toggle response = %+v, want water on", resp)
	}
	if h.rig.Water.Level {
		t.Error("water coil not driven low for on")
	}
	resp = h.disp.Dispatch(command.Pump{Type: "water"})
	if resp.State == nil || *resp.State {
		t.Fatalf("second toggle response = %+v, want water off", resp)
	}
	if !h.rig.Water.Level {
		t.Error("water coil not restored high for off")
	}
}

func TestPumpInvalidType(t *testing.T) {
	h := newHarness()
	resp := h.disp.Dispatch(command.Pump{Type: "lava"})
	if resp.Error != "Invalid pump type" {
		t.Errorf("error = %q, want %q", resp.Error, "Invalid pump type")
	}
}

func TestStatusBeforeCalibration(t *testing.T) {
	h := newHarness()
	resp := h.disp.Dispatch(command.Status{})
	if resp.Error != "" {
		t.Fatalf("status must not be gated on calibration: %s", resp.Error)
	}
	if resp.Run == nil || *resp.Run {
		t.Errorf("run = %v, want false at rest", resp.Run)
	}
	// rig probes read 2200, 2600, 1900 raw
	want := []int{50, 30, 65}
	if len(resp.Soil) != len(want) {
		t.Fatalf("soil = %v, want %v", resp.Soil, want)
	}
	for i := range want {
		if resp.Soil[i] != want[i] {
			t.Errorf("soil[%d] = %d, want %d", i, resp.Soil[i], want[i])
		}
	}
	if resp.PWater == nil || *resp.PWater || resp.PFert == nil || *resp.PFert {
		t.Errorf("pumps = (%v, %v), want both off", resp.PWater, resp.PFert)
	}
}

func TestStatusReflectsMotionAndPumps(t *testing.T) {
	h := newHarness()
	h.calibrate(t)
	h.disp.Dispatch(command.Pump{Type: "fert"})
	h.disp.Dispatch(command.Tree{ID: 9})
	resp := h.disp.Dispatch(command.Status{})
	if resp.Run == nil || !*resp.Run {
		t.Error("run should be true while a slot move is pending")
	}
	if resp.PFert == nil || !*resp.PFert {
		t.Error("fertilizer pump state lost")
	}
}

func TestHomeUngated(t *testing.T) {
	h := newHarness()
	resp := h.disp.Dispatch(command.Home{})
	if resp.Error != "" {
		t.Fatalf("home must work before calibration: %s", resp.Error)
	}
	if resp.Status != "homing" {
		t.Errorf("status = %q, want homing", resp.Status)
	}
	if h.disp.State.X.DistanceRemaining() != 0 {
		// axes start at logical zero with no calibration, so nothing to do
		t.Error("home before calibration should target the current origin")
	}
}

func TestMoveRelativeRevs(t *testing.T) {
	h := newHarness()
	resp := h.disp.Dispatch(command.Move{RevsX: 2.0, RevsY: -1.0})
	if resp.Error != "" {
		t.Fatalf("move must work before calibration: %s", resp.Error)
	}
	if resp.StepsX == nil || *resp.StepsX != 3200 {
		t.Errorf("stepsX = %v, want 3200", resp.StepsX)
	}
	if resp.StepsY == nil || *resp.StepsY != -1600 {
		t.Errorf("stepsY = %v, want -1600", resp.StepsY)
	}
	// relative moves compound
	h.disp.Dispatch(command.Move{RevsX: 0.5})
	if got := h.disp.State.X.DistanceRemaining(); got != 4000 {
		t.Errorf("compounded X distance = %d, want 4000", got)
	}
	if h.disp.State.CurrentTargetSlot != 0 {
		t.Error("a jog must not claim a slot")
	}
}

func TestRecalibrateResponse(t *testing.T) {
	h := newHarness()
	resp := h.disp.Dispatch(command.Recalibrate{})
	if resp.Status != "calibrated" || resp.Error != "" {
		t.Errorf("response = %+v, want status calibrated", resp)
	}
	if !h.disp.State.Calibrated {
		t.Error("system state not calibrated")
	}
}

func TestRecalibrateTimeoutReported(t *testing.T) {
	h := newHarness()
	h.disp.EndstopsX.Home = sim.DeadSwitch
	resp := h.disp.Dispatch(command.Recalibrate{})
	if resp.Error == "" {
		t.Fatal("expected a calibration timeout error")
	}
	if h.disp.State.Calibrated {
		t.Error("system flagged calibrated after a failed run")
	}
}

func TestHandleLineWireFormat(t *testing.T) {
	h := newHarness()
	cases := []struct {
		name string
		line string
		want map[string]interface{}
	}{
		{
			"tree before calibration",
			`{"cmd": "tree", "id": 3}`,
			map[string]interface{}{"error": "Not calibrated"},
		},
		{
			"unknown verb",
			`{"cmd": "levitate"}`,
			map[string]interface{}{"error": "Unknown command: levitate"},
		},
		{
			"pump",
			`{"cmd": "pump", "type": "water"}`,
			map[string]interface{}{"pump": "water", "state": true},
		},
		{
			"home",
			`{"cmd": "home"}`,
			map[string]interface{}{"status": "homing"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := h.disp.HandleLine([]byte(tc.line))
			var got map[string]interface{}
			if err := json.Unmarshal(out, &got); err != nil {
				t.Fatalf("response %q is not JSON: %v", out, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("response %q, want fields %v", out, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("field %q = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}
