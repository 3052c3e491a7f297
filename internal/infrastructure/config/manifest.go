// Package config provides infrastructure for loading model manifests.
// This package handles YAML parsing, schema validation, variable
// substitution and building the model graph a manifest describes.
package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/reglet-dev/verity/internal/domain/entities"
)

// Manifest is the YAML description of a model. It is input only: verity
// never writes a model back.
type Manifest struct {
	Vars            map[string]any       `yaml:"vars,omitempty" json:"vars,omitempty"`
	Model           ModelMeta            `yaml:"model" json:"model"`
	Units           []UnitSpec           `yaml:"units,omitempty" json:"units,omitempty"`
	System          SubsystemSpec        `yaml:"system" json:"system"`
	Users           []SubsystemSpec      `yaml:"users,omitempty" json:"users,omitempty"`
	Interfaces      []InterfaceSpec      `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Requirements    []RequirementSpec    `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	RequirementSets []RequirementSetSpec `yaml:"requirement_sets,omitempty" json:"requirement_sets,omitempty"`
}

// ModelMeta identifies the model.
type ModelMeta struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Requires is a semver constraint on the verity version.
	Requires string `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// UnitSpec defines a model-specific unit, e.g. {symbol: furlong, definition: 201.168m}.
type UnitSpec struct {
	Symbol     string `yaml:"symbol" json:"symbol"`
	Definition string `yaml:"definition" json:"definition"`
	Prefixable bool   `yaml:"prefixable,omitempty" json:"prefixable,omitempty"`
}

// SubsystemSpec describes a node of the decomposition. Users use the same
// shape without children.
type SubsystemSpec struct {
	Design   *DesignSpec     `yaml:"design,omitempty" json:"design,omitempty"`
	Name     string          `yaml:"name" json:"name"`
	Children []SubsystemSpec `yaml:"children,omitempty" json:"children,omitempty"`
}

// DesignSpec describes the design implementing a subsystem.
type DesignSpec struct {
	Properties map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
	Name       string         `yaml:"name,omitempty" json:"name,omitempty"`
}

// InterfaceSpec connects two or more subsystems or users.
type InterfaceSpec struct {
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	Connects []string `yaml:"connects" json:"connects"`
}

// RequirementSpec describes one requirement.
type RequirementSpec struct {
	Constraint  map[string]any `yaml:"constraint,omitempty" json:"constraint,omitempty"`
	ID          string         `yaml:"id" json:"id"`
	Kind        string         `yaml:"kind,omitempty" json:"kind,omitempty"`
	Text        string         `yaml:"text" json:"text"`
	DerivedFrom string         `yaml:"derived_from,omitempty" json:"derived_from,omitempty"`
	// Allocate is an allocation chain applied in order, each step refining
	// the previous owner.
	Allocate []string `yaml:"allocate,omitempty" json:"allocate,omitempty"`
}

// RequirementSetSpec groups requirements allocated together.
type RequirementSetSpec struct {
	Name         string   `yaml:"name" json:"name"`
	Kind         string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	AllocateTo   string   `yaml:"allocate_to,omitempty" json:"allocate_to,omitempty"`
	Requirements []string `yaml:"requirements" json:"requirements"`
}

// Requirement set kinds.
const (
	SetInternal = "internal"
	SetExternal = "external"
)

// ApplyDefaults fills in optional names and kinds.
func (m *Manifest) ApplyDefaults() {
	if m.Model.Name == "" {
		m.Model.Name = m.System.Name
	}
	m.System.applyDefaults()
	for i := range m.Users {
		m.Users[i].applyDefaults()
	}
	for i := range m.Interfaces {
		if m.Interfaces[i].Name == "" {
			m.Interfaces[i].Name = strings.Join(m.Interfaces[i].Connects, " <-> ")
		}
	}
	for i := range m.Requirements {
		r := &m.Requirements[i]
		if r.Kind == "" {
			r.Kind = entities.RequirementPlain.String()
			if r.DerivedFrom != "" {
				r.Kind = entities.RequirementDerived.String()
			}
		}
	}
	for i := range m.RequirementSets {
		if m.RequirementSets[i].Kind == "" {
			m.RequirementSets[i].Kind = SetInternal
		}
	}
}

func (s *SubsystemSpec) applyDefaults() {
	if s.Design != nil && s.Design.Name == "" {
		s.Design.Name = s.Name + " design"
	}
	for i := range s.Children {
		s.Children[i].applyDefaults()
	}
}

// Validate checks structure that the schema cannot express: unique
// identifiers, known references and well-formed versions. Graph rules are
// enforced by the builder.
func (m *Manifest) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if m.System.Name == "" {
		add("system.name is required")
	}
	if m.Model.Version != "" {
		if _, err := semver.NewVersion(m.Model.Version); err != nil {
			add("model.version %q is not a semantic version", m.Model.Version)
		}
	}
	if m.Model.Requires != "" {
		if _, err := semver.NewConstraint(m.Model.Requires); err != nil {
			add("model.requires %q is not a version constraint", m.Model.Requires)
		}
	}

	for _, u := range m.Users {
		if len(u.Children) > 0 {
			add("user %q cannot have children", u.Name)
		}
	}
	for _, i := range m.Interfaces {
		if len(i.Connects) < 2 {
			add("interface %q must connect at least two subsystems", i.Name)
		}
	}

	ids := make(map[string]bool, len(m.Requirements))
	for i, r := range m.Requirements {
		switch {
		case r.ID == "":
			add("requirements[%d] has no id", i)
		case ids[r.ID]:
			add("duplicate requirement id %q", r.ID)
		}
		ids[r.ID] = true
		if _, err := entities.ParseRequirementKind(r.Kind); err != nil {
			add("requirement %q: %v", r.ID, err)
		}
		if r.DerivedFrom == r.ID && r.ID != "" {
			add("requirement %q cannot be derived from itself", r.ID)
		}
	}
	for _, r := range m.Requirements {
		if r.DerivedFrom != "" && !ids[r.DerivedFrom] {
			add("requirement %q is derived from unknown requirement %q", r.ID, r.DerivedFrom)
		}
	}

	for _, s := range m.RequirementSets {
		if s.Kind != SetInternal && s.Kind != SetExternal {
			add("requirement set %q: kind must be %s or %s", s.Name, SetInternal, SetExternal)
		}
		for _, id := range s.Requirements {
			if !ids[id] {
				add("requirement set %q references unknown requirement %q", s.Name, id)
			}
		}
	}

	if len(problems) > 0 {
		return &ManifestError{Problems: problems}
	}
	return nil
}

// ManifestError lists structural problems found in a manifest.
type ManifestError struct {
	Problems []string
}

func (e *ManifestError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid manifest: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid manifest:\n    - %s", strings.Join(e.Problems, "\n    - "))
}
