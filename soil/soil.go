// Package soil reads the capacitive soil moisture probes.  Raw converter
// codes map linearly onto a percentage between a dry and a wet
// calibration point; anything outside the band clamps, so a disconnected
// probe reads 0 or 100, never garbage.
package soil

import (
	"fmt"
	"math"

	"github.com/techit45/Lisa-Smart-Farm/hw"
	"github.com/techit45/Lisa-Smart-Farm/util"
)

const (
	// DryCode is the raw reading of a probe in open air (0% moisture)
	DryCode = 3200

	// WetCode is the raw reading of a probe in water (100% moisture)
	WetCode = 1200
)

// ErrBadProbe is generated when a probe id is not wired.
type ErrBadProbe struct {
	ID int
}

func (e ErrBadProbe) Error() string {
	return fmt.Sprintf("no soil probe with id %d", e.ID)
}

// Reader converts raw probe readings to clamped percentages.
type Reader struct {
	probes []hw.AnalogIn
	dry    int
	wet    int
}

// NewReader returns a Reader over the given probes with the standard
// dry/wet calibration pair.
func NewReader(probes ...hw.AnalogIn) *Reader {
	return &Reader{probes: probes, dry: DryCode, wet: WetCode}
}

// ReadPercent samples one probe and returns its moisture percentage in
// [0, 100].
func (r *Reader) ReadPercent(id int) (int, error) {
	if id < 0 || id >= len(r.probes) {
		return 0, ErrBadProbe{ID: id}
	}
	return r.percent(r.probes[id].Read()), nil
}

// ReadAll samples every probe.
func (r *Reader) ReadAll() []int {
	out := make([]int, len(r.probes))
	for i, p := range r.probes {
		out[i] = r.percent(p.Read())
	}
	return out
}

func (r *Reader) percent(raw int) int {
	frac := float64(raw-r.dry) / float64(r.wet-r.dry)
	pct := int(math.Round(frac * 100))
	return util.ClampInt(pct, 0, 100)
}
