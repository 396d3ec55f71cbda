package catalog

import (
	"fmt"
	"strings"
)

// Severity is the closed, totally ordered priority scale. Higher values
// are more severe.
type Severity int

const (
	severityInvalid Severity = iota
	Low
	Medium
	High
	Critical
)

// Severities lists every valid severity from most to least severe.
var Severities = []Severity{Critical, High, Medium, Low}

// ParseSeverity parses a case-insensitive severity label.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return Critical, nil
	case "HIGH":
		return High, nil
	case "MEDIUM":
		return Medium, nil
	case "LOW":
		return Low, nil
	default:
		return severityInvalid, fmt.Errorf("unknown severity %q (want CRITICAL, HIGH, MEDIUM or LOW)", s)
	}
}

// Valid reports whether s is one of the enumerated severities.
func (s Severity) Valid() bool { return s >= Low && s <= Critical }

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool { return s >= min }

func (s Severity) String() string {
	switch s {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	case Low:
		return "LOW"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
