package command

import (
	"errors"
	"fmt"
)

// Error strings double as wire messages in the error response record, so
// they keep the firmware protocol's capitalized phrasing.
var (
	// ErrNotCalibrated is generated when a calibration-gated command
	// arrives before calibration completes
	ErrNotCalibrated = errors.New("Not calibrated")

	// ErrInvalidTreeID is generated when a tree command's slot id is
	// outside 1-9
	ErrInvalidTreeID = errors.New("Invalid tree id")

	// ErrInvalidPumpType is generated when a pump command names an
	// unknown channel
	ErrInvalidPumpType = errors.New("Invalid pump type")
)

// ErrMissingField is generated when a required field is absent from a
// command record.
type ErrMissingField struct {
	Field string
}

func (e ErrMissingField) Error() string {
	return fmt.Sprintf("Missing field: %s", e.Field)
}

// ErrUnknownCommand is generated when the verb does not name a command.
type ErrUnknownCommand struct {
	Cmd string
}

func (e ErrUnknownCommand) Error() string {
	return fmt.Sprintf("Unknown command: %s", e.Cmd)
}

// ErrMalformed is generated when a line is not a JSON object or a field
// has the wrong type.
type ErrMalformed struct {
	Reason string
}

func (e ErrMalformed) Error() string {
	return fmt.Sprintf("Malformed command: %s", e.Reason)
}
