package entities

import (
	"fmt"
	"strings"
)

// Interface is a named, symmetric connection between two or more
// subsystems. It is immutable once created, apart from the requirements
// allocated to it.
type Interface struct {
	name         string
	systems      []*Subsystem
	requirements []*Requirement
}

// NewInterface connects systems and registers the interface on each of
// them. An empty name defaults to the connected names joined by " <-> ".
func NewInterface(name string, systems ...*Subsystem) (*Interface, error) {
	unique := make([]*Subsystem, 0, len(systems))
	seen := make(map[*Subsystem]bool, len(systems))
	for _, s := range systems {
		if s == nil {
			return nil, definitionError(name, "cannot connect a nil subsystem")
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	if len(unique) < 2 {
		return nil, definitionError(name, "tried to create an interface between fewer than two things")
	}

	project := unique[0].project
	for _, s := range unique[1:] {
		if s.project != project {
			return nil, definitionError(name, "%s and %s belong to different projects", unique[0], s)
		}
	}

	if name == "" {
		names := make([]string, len(unique))
		for i, s := range unique {
			names[i] = s.name
		}
		name = strings.Join(names, " <-> ")
	}

	i := &Interface{name: name, systems: unique}
	if err := project.registerInterface(i); err != nil {
		return nil, err
	}
	for _, s := range unique {
		s.interfaces = append(s.interfaces, i)
	}
	return i, nil
}

// Name returns the interface name.
func (i *Interface) Name() string { return i.name }

// Systems returns the connected subsystems.
func (i *Interface) Systems() []*Subsystem {
	return append([]*Subsystem(nil), i.systems...)
}

// Requirements returns the requirements allocated to the interface.
func (i *Interface) Requirements() []*Requirement {
	return append([]*Requirement(nil), i.requirements...)
}

// Design always returns nil: interfaces carry no design of their own.
func (i *Interface) Design() *Design { return nil }

// Connects reports whether s is one of the connected subsystems.
func (i *Interface) Connects(s *Subsystem) bool {
	for _, x := range i.systems {
		if x == s {
			return true
		}
	}
	return false
}

func (i *Interface) String() string {
	return fmt.Sprintf("Interface %q", i.name)
}

func (i *Interface) attach(r *Requirement) { i.requirements = append(i.requirements, r) }
func (i *Interface) detach(r *Requirement) { i.requirements = remove(i.requirements, r) }
