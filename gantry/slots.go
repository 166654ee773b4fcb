package gantry

import "math"

// Slot is one plant pot position expressed as fractions of each axis's
// calibrated travel.
type Slot struct {
	FX float64
	FY float64
}

// SlotTable maps slot ids 1-9 (index 0 unused) onto the 3x3 pot grid,
// row-major from the home corner.
var SlotTable = [10]Slot{
	1: {0.15, 0.15},
	2: {0.50, 0.15},
	3: {0.85, 0.15},
	4: {0.15, 0.50},
	5: {0.50, 0.50},
	6: {0.85, 0.50},
	7: {0.15, 0.85},
	8: {0.50, 0.85},
	9: {0.85, 0.85},
}

// ValidSlot reports whether id names a pot slot.
func ValidSlot(id int) bool {
	return id >= 1 && id <= 9
}

// SlotSteps converts a slot id into absolute step targets for axes with
// the given calibrated travels.
func SlotSteps(id, travelX, travelY int) (x, y int) {
	s := SlotTable[id]
	x = int(math.Round(s.FX * float64(travelX)))
	y = int(math.Round(s.FY * float64(travelY)))
	return x, y
}
