package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/theckman/yacspin"
)

// get performs a GET against the bridge and decodes the JSON body into out.
// Non-200 replies come back as errors carrying the server's message.
func get(route string, params url.Values, out interface{}) error {
	u := server + route
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := http.Get(u)
	if err != nil {
		return errors.Wrap(err, "is farmsrv running?")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, string(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func onoff(b bool) string {
	if b {
		return color.GreenString("on")
	}
	return color.RedString("off")
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print gantry run state, soil moisture, and pump states",
		RunE: func(_ *cobra.Command, _ []string) error {
			var st struct {
				Run      bool  `json:"run"`
				Moisture []int `json:"moisture"`
				PWater   bool  `json:"pWater"`
				PFert    bool  `json:"pFert"`
			}
			if err := get("/status", nil, &st); err != nil {
				return err
			}
			run := color.YellowString("idle")
			if st.Run {
				run = color.GreenString("moving")
			}
			fmt.Printf("gantry: %s\n", run)
			fmt.Printf("water pump: %s  fertilizer pump: %s\n", onoff(st.PWater), onoff(st.PFert))
			fmt.Printf("soil moisture:")
			for _, pct := range st.Moisture {
				fmt.Printf(" %d%%", pct)
			}
			fmt.Println()
			return nil
		},
	}
}

func NewTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [id]",
		Short: "Move the gantry over a pot (0-8)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id must be an integer, got %q", args[0])
			}
			v := url.Values{}
			v.Set("id", strconv.Itoa(id))
			if err := get("/tree", v, nil); err != nil {
				return err
			}
			fmt.Printf("moving to pot %d\n", id)
			return nil
		},
	}
}

func NewPumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pump [water|fert]",
		Short: "Toggle the water or fertilizer pump",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v := url.Values{}
			v.Set("type", args[0])
			var ret struct {
				Pump  string `json:"pump"`
				State bool   `json:"state"`
			}
			if err := get("/pump", v, &ret); err != nil {
				return err
			}
			fmt.Printf("%s pump is now %s\n", ret.Pump, onoff(ret.State))
			return nil
		},
	}
}

func NewHomeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Send both axes to their zero positions",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := get("/home", nil, nil); err != nil {
				return err
			}
			fmt.Println("homing")
			return nil
		},
	}
}

func NewMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move [x] [y]",
		Short: "Jog the gantry by a relative amount, in dashboard pixels",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, a := range args {
				if _, err := strconv.ParseFloat(a, 64); err != nil {
					return fmt.Errorf("offsets must be numbers, got %q", a)
				}
			}
			v := url.Values{}
			v.Set("x", args[0])
			v.Set("y", args[1])
			var ret struct {
				StepsX int `json:"stepsX"`
				StepsY int `json:"stepsY"`
			}
			if err := get("/move", v, &ret); err != nil {
				return err
			}
			fmt.Printf("jogging %d steps in X, %d in Y\n", ret.StepsX, ret.StepsY)
			return nil
		},
	}
}

func NewRecalibrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recalibrate",
		Short: "Re-run homing and travel measurement on both axes",
		Long: `Re-run homing and travel measurement on both axes.

This drives each axis into its limit switches and takes tens of seconds.
The bridge holds a lock for the duration, so other commands answer 423
until it completes.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := yacspin.Config{
				Frequency:       100 * time.Millisecond,
				CharSet:         yacspin.CharSets[59],
				Suffix:          " recalibrating",
				SuffixAutoColon: true,
				StopCharacter:   "✓",
				StopColors:      []string{"fgGreen"},
				StopFailMessage: "calibration failed",
			}
			spin, err := yacspin.New(cfg)
			if err != nil {
				return err
			}
			spin.Start()
			if err := get("/recalibrate", nil, nil); err != nil {
				spin.StopFail()
				return err
			}
			spin.StopMessage("calibrated")
			spin.Stop()
			return nil
		},
	}
}
