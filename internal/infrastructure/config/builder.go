package config

import (
	"fmt"
	"log/slog"

	"github.com/reglet-dev/verity/internal/application/dto"
	"github.com/reglet-dev/verity/internal/domain/entities"
	"github.com/reglet-dev/verity/internal/domain/expression"
	"github.com/reglet-dev/verity/internal/domain/quantity"
)

// Builder turns a validated manifest into a model graph.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a new builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build constructs the project in dependency order: units, the subsystem
// tree, users, interfaces, designs, requirements, sets and finally the
// individual allocation chains. Any domain error aborts the build.
func (b *Builder) Build(m *Manifest) (*dto.Model, error) {
	registry, err := b.registry(m.Units)
	if err != nil {
		return nil, err
	}

	p := entities.NewProject(m.Model.Name, registry)
	sys, err := p.NewSystem(m.System.Name)
	if err != nil {
		return nil, err
	}
	if err := b.children(sys, m.System.Children); err != nil {
		return nil, err
	}
	for _, u := range m.Users {
		if _, err := p.NewUser(u.Name); err != nil {
			return nil, err
		}
	}

	for _, spec := range m.Interfaces {
		systems := make([]*entities.Subsystem, 0, len(spec.Connects))
		for _, name := range spec.Connects {
			s, ok := p.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("interface %q: unknown subsystem %q", spec.Name, name)
			}
			systems = append(systems, s)
		}
		if _, err := entities.NewInterface(spec.Name, systems...); err != nil {
			return nil, err
		}
	}

	if err := b.designs(p, &m.System); err != nil {
		return nil, err
	}
	for i := range m.Users {
		if err := b.designs(p, &m.Users[i]); err != nil {
			return nil, err
		}
	}

	reqs, byID, err := b.requirements(m.Requirements)
	if err != nil {
		return nil, err
	}

	for _, spec := range m.RequirementSets {
		set := entities.NewRequirementSet(spec.Name)
		if spec.Kind == SetExternal {
			set = entities.NewExternalRequirementSet(spec.Name)
		}
		for _, id := range spec.Requirements {
			if err := set.Add(byID[id]); err != nil {
				return nil, fmt.Errorf("requirement set %q: %w", spec.Name, err)
			}
		}
		if spec.AllocateTo == "" {
			continue
		}
		target, err := resolveTarget(p, spec.AllocateTo)
		if err != nil {
			return nil, fmt.Errorf("requirement set %q: %w", spec.Name, err)
		}
		if err := set.AllocateTo(target); err != nil {
			return nil, fmt.Errorf("requirement set %q: %w", spec.Name, err)
		}
	}

	for _, spec := range m.Requirements {
		for _, name := range spec.Allocate {
			target, err := resolveTarget(p, name)
			if err != nil {
				return nil, fmt.Errorf("requirement %q: %w", spec.ID, err)
			}
			if err := byID[spec.ID].AllocateTo(target); err != nil {
				return nil, fmt.Errorf("requirement %q: %w", spec.ID, err)
			}
		}
	}

	b.logger.Debug("model built",
		"model", m.Model.Name,
		"subsystems", len(p.Subsystems()),
		"interfaces", len(p.Interfaces()),
		"requirements", len(reqs))

	return &dto.Model{
		Project:      p,
		Requirements: reqs,
		Name:         m.Model.Name,
		Version:      m.Model.Version,
		Description:  m.Model.Description,
	}, nil
}

// registry returns the default registry, or a clone extended with the
// manifest's units. Definitions may build on earlier ones.
func (b *Builder) registry(units []UnitSpec) (*quantity.Registry, error) {
	if len(units) == 0 {
		return quantity.DefaultRegistry(), nil
	}

	registry := quantity.DefaultRegistry().Clone()
	for _, u := range units {
		node, err := expression.Parse(u.Definition)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Symbol, err)
		}
		if !expression.IsLiteral(node) {
			return nil, fmt.Errorf("unit %s: definition %q must be a literal", u.Symbol, u.Definition)
		}
		m, err := expression.NewEvaluator(registry).Literal(node)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Symbol, err)
		}
		if !m.IsExact() {
			return nil, fmt.Errorf("unit %s: definition cannot carry an uncertainty", u.Symbol)
		}
		if err := registry.Define(u.Symbol, m.Value, u.Prefixable); err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Symbol, err)
		}
		b.logger.Debug("unit defined", "symbol", u.Symbol, "definition", u.Definition)
	}
	return registry, nil
}

func (b *Builder) children(parent *entities.Subsystem, specs []SubsystemSpec) error {
	for i := range specs {
		s, err := entities.NewSubsystem(specs[i].Name, parent)
		if err != nil {
			return err
		}
		if err := b.children(s, specs[i].Children); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) designs(p *entities.Project, spec *SubsystemSpec) error {
	if spec.Design != nil {
		s, _ := p.Lookup(spec.Name)
		d := p.NewDesign(spec.Design.Name)
		if err := d.SetProperties(spec.Design.Properties); err != nil {
			return fmt.Errorf("design %q: %w", spec.Design.Name, err)
		}
		if err := d.Implements(s); err != nil {
			return err
		}
	}
	for i := range spec.Children {
		if err := b.designs(p, &spec.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// requirements creates requirements parents first and returns them in file
// order together with an index by id.
func (b *Builder) requirements(specs []RequirementSpec) ([]*entities.Requirement, map[string]*entities.Requirement, error) {
	order, err := derivationOrder(specs)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*entities.Requirement, len(specs))
	for _, i := range order {
		spec := specs[i]
		kind, err := entities.ParseRequirementKind(spec.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("requirement %q: %w", spec.ID, err)
		}
		opts := []entities.RequirementOption{entities.WithID(spec.ID), entities.WithKind(kind)}

		var r *entities.Requirement
		if spec.DerivedFrom != "" {
			r, err = entities.NewDerivedRequirement(byID[spec.DerivedFrom], spec.Text, spec.Constraint, opts...)
		} else {
			r, err = entities.NewRequirement(spec.Text, spec.Constraint, opts...)
		}
		if err != nil {
			return nil, nil, err
		}
		byID[spec.ID] = r
	}

	reqs := make([]*entities.Requirement, len(specs))
	for i, spec := range specs {
		reqs[i] = byID[spec.ID]
	}
	return reqs, byID, nil
}

// derivationOrder sorts requirement indexes with Kahn's algorithm so every
// parent precedes the requirements derived from it. Within a level, file
// order is kept.
func derivationOrder(specs []RequirementSpec) ([]int, error) {
	inDegree := make(map[string]int, len(specs))
	dependents := make(map[string][]string)
	for _, r := range specs {
		if r.DerivedFrom != "" {
			inDegree[r.ID] = 1
			dependents[r.DerivedFrom] = append(dependents[r.DerivedFrom], r.ID)
		}
	}

	order := make([]int, 0, len(specs))
	processed := make(map[string]bool, len(specs))
	for len(processed) < len(specs) {
		var level []int
		for i, r := range specs {
			if !processed[r.ID] && inDegree[r.ID] == 0 {
				level = append(level, i)
			}
		}

		// No progress made → cycle
		if len(level) == 0 {
			var remaining []string
			for _, r := range specs {
				if !processed[r.ID] {
					remaining = append(remaining, r.ID)
				}
			}
			return nil, fmt.Errorf("circular derivation among requirements: %v", remaining)
		}

		for _, i := range level {
			processed[specs[i].ID] = true
			for _, dependent := range dependents[specs[i].ID] {
				inDegree[dependent]--
			}
		}
		order = append(order, level...)
	}
	return order, nil
}

// resolveTarget finds the subsystem or interface called name.
func resolveTarget(p *entities.Project, name string) (entities.AllocationTarget, error) {
	s, isSubsystem := p.Lookup(name)
	i, isInterface := p.LookupInterface(name)
	switch {
	case isSubsystem && isInterface:
		return nil, fmt.Errorf("allocation target %q names both a subsystem and an interface", name)
	case isSubsystem:
		return s, nil
	case isInterface:
		return i, nil
	}
	return nil, fmt.Errorf("unknown allocation target %q", name)
}
