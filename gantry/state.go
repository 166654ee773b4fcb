package gantry

// State is the process-wide system state record.  It is owned by the
// single control flow and mutated only through Axis and Calibrator
// operations; command validation reads only Calibrated and
// CurrentTargetSlot.
type State struct {
	// Calibrated is true once both axes have measured travel lengths.
	Calibrated bool

	// CurrentTargetSlot is the id of the last slot-based move, 0 for
	// none.  Relative jogs and homing do not update it.
	CurrentTargetSlot int

	X *Axis
	Y *Axis
}

// Moving reports whether either axis still has distance to run.
func (s *State) Moving() bool {
	return s.X.DistanceRemaining() != 0 || s.Y.DistanceRemaining() != 0
}
