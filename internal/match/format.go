package match

import (
	"fmt"
	"strings"
)

// Format is the win-threshold rule of a match.
type Format int

const (
	// FirstTo2 ends when a player reaches 2 wins.
	FirstTo2 Format = iota + 1
	// FirstTo3 ends when a player reaches 3 wins.
	FirstTo3
	// BestOf5 ends when a player reaches 3 wins.
	BestOf5
	// BestOf7 ends when a player reaches 4 wins.
	BestOf7
)

// WinsRequired returns the score at which the match is decided.
// Unknown formats fall back to FirstTo2.
func (f Format) WinsRequired() int {
	switch f {
	case FirstTo3, BestOf5:
		return 3
	case BestOf7:
		return 4
	default:
		return 2
	}
}

// Label returns the short label shown on the overlay.
func (f Format) Label() string {
	switch f {
	case FirstTo2:
		return "FT2"
	case FirstTo3:
		return "FT3"
	case BestOf5:
		return "BO5"
	case BestOf7:
		return "BO7"
	default:
		return ""
	}
}

// String returns the long form name.
func (f Format) String() string {
	switch f {
	case FirstTo2:
		return "first-to-2"
	case FirstTo3:
		return "first-to-3"
	case BestOf5:
		return "best-of-5"
	case BestOf7:
		return "best-of-7"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f >= FirstTo2 && f <= BestOf7
}

// ParseFormat accepts either the overlay label ("FT2") or the long
// form ("first-to-2"), case-insensitive.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, f := range []Format{FirstTo2, FirstTo3, BestOf5, BestOf7} {
		if key == strings.ToLower(f.Label()) || key == f.String() {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown match format %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid match format %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so formats can be
// written as "best-of-5" or "BO5" in YAML and JSON.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
