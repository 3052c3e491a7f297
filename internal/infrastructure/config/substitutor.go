package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Variable pattern: {{ .vars.key }}
var varPattern = regexp.MustCompile(`\{\{\s*\.vars\.([a-zA-Z0-9_.]+)\s*\}\}`)

// VariableSubstitutor expands {{ .vars.key }} references in a manifest.
type VariableSubstitutor struct{}

// NewVariableSubstitutor creates a new variable substitutor.
func NewVariableSubstitutor() *VariableSubstitutor {
	return &VariableSubstitutor{}
}

// Substitute replaces variable references in design properties, requirement
// texts and constraint thresholds with values from the manifest's vars map.
// Nested paths like {{ .vars.limits.mass }} are supported. A value that is
// exactly one reference keeps the variable's type, so a numeric var stays
// numeric. Modifies the manifest in place.
func (s *VariableSubstitutor) Substitute(m *Manifest) error {
	if err := s.substituteSubsystem(&m.System, m.Vars); err != nil {
		return err
	}
	for i := range m.Users {
		if err := s.substituteSubsystem(&m.Users[i], m.Vars); err != nil {
			return err
		}
	}

	for i := range m.Requirements {
		r := &m.Requirements[i]
		text, err := s.substituteInString(r.Text, m.Vars)
		if err != nil {
			return fmt.Errorf("requirement %s: %w", r.ID, err)
		}
		r.Text = text
		if err := s.substituteInMap(r.Constraint, m.Vars); err != nil {
			return fmt.Errorf("requirement %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *VariableSubstitutor) substituteSubsystem(spec *SubsystemSpec, vars map[string]any) error {
	if spec.Design != nil {
		if err := s.substituteInMap(spec.Design.Properties, vars); err != nil {
			return fmt.Errorf("subsystem %s: %w", spec.Name, err)
		}
	}
	for i := range spec.Children {
		if err := s.substituteSubsystem(&spec.Children[i], vars); err != nil {
			return err
		}
	}
	return nil
}

// substituteInMap substitutes string values of m in place.
func (s *VariableSubstitutor) substituteInMap(m map[string]any, vars map[string]any) error {
	for key, value := range m {
		str, ok := value.(string)
		if !ok {
			continue
		}
		if match := varPattern.FindStringSubmatch(str); match != nil && match[0] == strings.TrimSpace(str) {
			v, err := lookupVar(vars, match[1])
			if err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
			m[key] = v
			continue
		}
		substituted, err := s.substituteInString(str, vars)
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		m[key] = substituted
	}
	return nil
}

func (s *VariableSubstitutor) substituteInString(str string, vars map[string]any) (string, error) {
	var lastErr error
	result := varPattern.ReplaceAllStringFunc(str, func(match string) string {
		submatches := varPattern.FindStringSubmatch(match)
		value, err := lookupVar(vars, submatches[1])
		if err != nil {
			lastErr = err
			return match
		}
		return fmt.Sprintf("%v", value)
	})
	if lastErr != nil {
		return "", lastErr
	}
	return result, nil
}

// lookupVar looks up a variable by dotted path.
func lookupVar(vars map[string]any, path string) (any, error) {
	parts := strings.Split(path, ".")
	current := any(vars)

	for i, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("variable path %s: cannot access %s (not a map)", path, strings.Join(parts[:i+1], "."))
		}
		value, exists := m[part]
		if !exists {
			return nil, fmt.Errorf("variable not found: %s", path)
		}
		current = value
	}

	if _, ok := current.(map[string]any); ok {
		return nil, fmt.Errorf("variable %s is a map, not a value", path)
	}
	return current, nil
}
