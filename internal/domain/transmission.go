package domain

import "strings"

// Transmission is the gearbox kind of a listed vehicle. The zero value is
// TransmissionUnknown.
type Transmission int

const (
	TransmissionUnknown Transmission = iota
	TransmissionAutomatic
	TransmissionManual
)

// known lists the vocabulary ParseTransmission matches against.
var known = []Transmission{TransmissionAutomatic, TransmissionManual}

// ParseTransmission maps a raw "Transmission Type" cell onto a Transmission.
// Matching is case-insensitive and ignores surrounding whitespace. Empty or
// unrecognized input yields TransmissionUnknown; the conversion never fails.
func ParseTransmission(s string) Transmission {
	s = strings.TrimSpace(s)
	if s == "" {
		return TransmissionUnknown
	}
	for _, t := range known {
		if strings.EqualFold(t.String(), s) {
			return t
		}
	}
	return TransmissionUnknown
}

func (t Transmission) String() string {
	switch t {
	case TransmissionAutomatic:
		return "Automatic"
	case TransmissionManual:
		return "Manual"
	default:
		return "Unknown"
	}
}
