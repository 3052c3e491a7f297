package values

import (
	"fmt"
	"strings"
)

// Severity represents the level of concern of a verification result.
// Enforces valid severity values and provides ordering.
type Severity struct {
	value SeverityLevel
}

// SeverityLevel is the internal representation
type SeverityLevel int

const (
	SeverityInfo  SeverityLevel = 0
	SeverityWarn  SeverityLevel = 1
	SeverityError SeverityLevel = 2
)

// Predefined severity values
var (
	SevInfo  = Severity{SeverityInfo}
	SevWarn  = Severity{SeverityWarn}
	SevError = Severity{SeverityError}
)

// NewSeverity creates a Severity from its long name ("Information",
// "Warning", "Error") or short form ("info", "warn", "error").
func NewSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "information":
		return SevInfo, nil
	case "warn", "warning":
		return SevWarn, nil
	case "error":
		return SevError, nil
	default:
		return Severity{}, fmt.Errorf("invalid severity: %q", s)
	}
}

// MustNewSeverity creates a Severity or panics
func MustNewSeverity(s string) Severity {
	sev, err := NewSeverity(s)
	if err != nil {
		panic(err)
	}
	return sev
}

// String returns the report label
func (s Severity) String() string {
	switch s.value {
	case SeverityWarn:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return "Information"
	}
}

// Short returns the lower-case short form used in config and filters
func (s Severity) Short() string {
	switch s.value {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Level returns the numeric severity level (for ordering)
func (s Severity) Level() int {
	return int(s.value)
}

// IsHigherThan returns true if this severity is higher than the other
func (s Severity) IsHigherThan(other Severity) bool {
	return s.value > other.value
}

// IsHigherOrEqual returns true if this severity is higher or equal to the other
func (s Severity) IsHigherOrEqual(other Severity) bool {
	return s.value >= other.value
}

// Equals checks if two severities are equal
func (s Severity) Equals(other Severity) bool {
	return s.value == other.value
}

// MarshalJSON implements json.Marshaler
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) < 2 {
		return fmt.Errorf("invalid severity JSON")
	}
	str = str[1 : len(str)-1]

	sev, err := NewSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so severities can be read
// from config files and flags.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := NewSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
