// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"

	"github.com/google/uuid"
)

// RunID uniquely identifies one verification run and the report it produced.
type RunID struct {
	value uuid.UUID
}

// NewRunID creates a new random run ID
func NewRunID() RunID {
	return RunID{value: uuid.New()}
}

// ParseRunID parses a string into a RunID
func ParseRunID(s string) (RunID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RunID{}, fmt.Errorf("invalid run ID: %w", err)
	}
	return RunID{value: id}, nil
}

// MustParseRunID parses a string or panics (for tests only)
func MustParseRunID(s string) RunID {
	id, err := ParseRunID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (r RunID) String() string {
	return r.value.String()
}

// Short returns the first eight hex digits, enough to tell runs apart in logs.
func (r RunID) Short() string {
	return r.value.String()[:8]
}

// UUID returns the underlying uuid.UUID
func (r RunID) UUID() uuid.UUID {
	return r.value
}

// IsZero returns true if this is the zero value
func (r RunID) IsZero() bool {
	return r.value == uuid.Nil
}

// Equals checks if two RunIDs are equal
func (r RunID) Equals(other RunID) bool {
	return r.value == other.value
}

// MarshalJSON implements json.Marshaler
func (r RunID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *RunID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid run ID JSON")
	}
	s = s[1 : len(s)-1]

	id, err := ParseRunID(s)
	if err != nil {
		return err
	}
	*r = id
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler
func (r RunID) MarshalYAML() (any, error) {
	return r.value.String(), nil
}
