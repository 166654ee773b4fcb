package command

import "encoding/json"

// envelope is the superset of every verb's fields.  Pointers distinguish
// absent from zero, so required fields can be checked for presence
// instead of dereferenced blind.
type envelope struct {
	Cmd   *string  `json:"cmd"`
	ID    *int     `json:"id"`
	Type  *string  `json:"type"`
	RevsX *float64 `json:"revsX"`
	RevsY *float64 `json:"revsY"`
}

// ParseLine decodes one request line into a typed command record.  It
// validates presence and type of every required field; range checks
// (slot ids, channel names) belong to the dispatcher.
func ParseLine(line []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, ErrMalformed{Reason: err.Error()}
	}
	if env.Cmd == nil {
		return nil, ErrMissingField{Field: "cmd"}
	}
	switch *env.Cmd {
	case "tree":
		if env.ID == nil {
			return nil, ErrMissingField{Field: "id"}
		}
		return Tree{ID: *env.ID}, nil
	case "pump":
		if env.Type == nil {
			return nil, ErrMissingField{Field: "type"}
		}
		return Pump{Type: *env.Type}, nil
	case "status":
		return Status{}, nil
	case "home":
		return Home{}, nil
	case "recalibrate":
		return Recalibrate{}, nil
	case "move":
		m := Move{}
		if env.RevsX != nil {
			m.RevsX = *env.RevsX
		}
		if env.RevsY != nil {
			m.RevsY = *env.RevsY
		}
		return m, nil
	default:
		return nil, ErrUnknownCommand{Cmd: *env.Cmd}
	}
}
