/*Package hw declares the hardware interfaces the gantry controller drives.

The controller never touches pins directly; every physical resource is
reached through one of these interfaces.  Package sim implements all of
them in software, and a port to real silicon (ESP32, RP2040, ...) only
has to satisfy them with whatever GPIO/ADC library the target uses.
*/
package hw

// DigitalIn is a single digital input, e.g. a limit switch.
type DigitalIn interface {
	// Read samples the input.  true means electrically active, after any
	// inversion for pull-up wiring has been applied by the implementation.
	Read() bool
}

// DigitalOut is a single digital output, e.g. a relay coil driver.
type DigitalOut interface {
	// Set drives the output high (true) or low (false)
	Set(bool)
}

// AnalogIn is a single ADC channel, e.g. a soil moisture probe.
type AnalogIn interface {
	// Read returns the raw converter code.  The gantry's sensors are
	// 12-bit, so values are in [0, 4095] on real hardware; calibration
	// maths must not assume this and clamp.
	Read() int
}

// StepDriver is one step/dir stepper output.  Implementations emit a
// single step pulse per call and track direction themselves.
type StepDriver interface {
	// Step emits one step pulse.  dir is true for motion away from the
	// home switch.
	Step(dir bool)
}
