/*Package command implements the line protocol of the gantry controller:
typed command records, the validating decoder that produces them, and the
stateless dispatcher that routes them against system state.

Each request is one JSON object on one line, {"cmd": <verb>, ...}; each
request produces exactly one flat response object.  The decoder checks
field presence and type before a record ever reaches the dispatcher, so
dispatch only pattern-matches over well-formed variants.
*/
package command

// Command is a decoded, well-formed command record.  Exactly the verb
// types in this package implement it.
type Command interface {
	verb() string
}

// Tree parks the actuator over a pot slot.
type Tree struct {
	// ID is the slot id, 1-9
	ID int
}

// Pump toggles one pump relay.
type Pump struct {
	// Type is the relay channel name, "water" or "fert"
	Type string
}

// Status samples the system: run flag, soil percentages, pump states.
type Status struct{}

// Home moves both axes to zero.
type Home struct{}

// Recalibrate re-runs the full calibration sequence synchronously.
type Recalibrate struct{}

// Move jogs both axes by a relative number of motor revolutions.
type Move struct {
	RevsX float64
	RevsY float64
}

func (Tree) verb() string        { return "tree" }
func (Pump) verb() string        { return "pump" }
func (Status) verb() string      { return "status" }
func (Home) verb() string        { return "home" }
func (Recalibrate) verb() string { return "recalibrate" }
func (Move) verb() string        { return "move" }
