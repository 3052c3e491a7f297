package entities

import "fmt"

// SubsystemKind distinguishes the root System, ordinary Subsystems and Users.
type SubsystemKind int

const (
	KindSubsystem SubsystemKind = iota
	KindSystem
	KindUser
)

func (k SubsystemKind) String() string {
	switch k {
	case KindSystem:
		return "System"
	case KindUser:
		return "User"
	default:
		return "Subsystem"
	}
}

// Subsystem is a node of the structural decomposition. Its parent link and
// the parent's children list are set together at construction.
type Subsystem struct {
	project      *Project
	parent       *Subsystem
	design       *Design
	name         string
	children     []*Subsystem
	requirements []*Requirement
	interfaces   []*Interface
	kind         SubsystemKind
}

// NewSubsystem creates a subsystem under parent and appends it to the
// parent's children.
func NewSubsystem(name string, parent *Subsystem) (*Subsystem, error) {
	if parent == nil {
		return nil, definitionError(name, "a subsystem needs a parent; use NewSystem or NewUser for roots")
	}
	if parent.kind == KindUser {
		return nil, definitionError(name, "users cannot own subsystems (parent %s)", parent)
	}
	return parent.project.register(name, KindSubsystem, parent)
}

// Name returns the unique subsystem name.
func (s *Subsystem) Name() string { return s.name }

// Kind returns whether this is the System, a Subsystem or a User.
func (s *Subsystem) Kind() SubsystemKind { return s.kind }

// Project returns the owning construction context.
func (s *Subsystem) Project() *Project { return s.project }

// Parent returns the owning subsystem, nil for the System and Users.
func (s *Subsystem) Parent() *Subsystem { return s.parent }

// Design returns the bound design, if any.
func (s *Subsystem) Design() *Design { return s.design }

// Children returns the child subsystems in insertion order.
func (s *Subsystem) Children() []*Subsystem {
	return append([]*Subsystem(nil), s.children...)
}

// Requirements returns the requirements allocated directly to s.
func (s *Subsystem) Requirements() []*Requirement {
	return append([]*Requirement(nil), s.requirements...)
}

// Interfaces returns the interfaces s takes part in.
func (s *Subsystem) Interfaces() []*Interface {
	return append([]*Interface(nil), s.interfaces...)
}

// Siblings returns the other children of s's parent.
func (s *Subsystem) Siblings() []*Subsystem {
	if s.parent == nil {
		return nil
	}
	out := make([]*Subsystem, 0, len(s.parent.children))
	for _, c := range s.parent.children {
		if c != s {
			out = append(out, c)
		}
	}
	return out
}

// Peers returns every other subsystem reachable through one of s's
// interfaces, deduplicated, in discovery order.
func (s *Subsystem) Peers() []*Subsystem {
	seen := map[*Subsystem]bool{s: true}
	var out []*Subsystem
	for _, i := range s.interfaces {
		for _, other := range i.systems {
			if seen[other] {
				continue
			}
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// InterfacesWith connects s and other through a new interface registered on
// both. An empty name defaults to "A <-> B".
func (s *Subsystem) InterfacesWith(other *Subsystem, name string) (*Interface, error) {
	if name == "" && other != nil {
		name = fmt.Sprintf("%s <-> %s", s.name, other.name)
	}
	return NewInterface(name, s, other)
}

// IsAncestorOf reports whether s is a strict ancestor of o.
func (s *Subsystem) IsAncestorOf(o *Subsystem) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == s {
			return true
		}
	}
	return false
}

func (s *Subsystem) String() string {
	return fmt.Sprintf("%s %q", s.kind, s.name)
}

func (s *Subsystem) attach(r *Requirement) { s.requirements = append(s.requirements, r) }
func (s *Subsystem) detach(r *Requirement) { s.requirements = remove(s.requirements, r) }

func remove(list []*Requirement, r *Requirement) []*Requirement {
	for i, x := range list {
		if x == r {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
