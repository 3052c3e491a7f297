// Package entities contains the structural model verified by verity:
// subsystems arranged in a tree under a single System, interfaces between
// them, designs carrying properties, and requirements allocated to
// subsystems or interfaces.
package entities

import (
	"github.com/reglet-dev/verity/internal/domain/expression"
	"github.com/reglet-dev/verity/internal/domain/quantity"
)

// Project is the construction context of one model. It owns the name
// registry and enforces that names are unique and that at most one System
// exists.
type Project struct {
	registry   *quantity.Registry
	evaluator  *expression.Evaluator
	system     *Subsystem
	byName     map[string]*Subsystem
	interfaces map[string]*Interface
	name       string
	subsystems []*Subsystem
	users      []*Subsystem
	ifaceOrder []*Interface
}

// NewProject creates an empty project. A nil registry selects the default
// unit registry.
func NewProject(name string, registry *quantity.Registry) *Project {
	if registry == nil {
		registry = quantity.DefaultRegistry()
	}
	return &Project{
		name:       name,
		registry:   registry,
		evaluator:  expression.NewEvaluator(registry),
		byName:     make(map[string]*Subsystem),
		interfaces: make(map[string]*Interface),
	}
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// Registry returns the unit registry used for literals in this project.
func (p *Project) Registry() *quantity.Registry { return p.registry }

// Evaluator returns the expression evaluator bound to the project registry.
func (p *Project) Evaluator() *expression.Evaluator { return p.evaluator }

// System returns the root subsystem, or nil before NewSystem is called.
func (p *Project) System() *Subsystem { return p.system }

// Users returns the users in creation order.
func (p *Project) Users() []*Subsystem {
	return append([]*Subsystem(nil), p.users...)
}

// Subsystems returns every System, Subsystem and User in creation order.
func (p *Project) Subsystems() []*Subsystem {
	return append([]*Subsystem(nil), p.subsystems...)
}

// Interfaces returns every interface in creation order.
func (p *Project) Interfaces() []*Interface {
	return append([]*Interface(nil), p.ifaceOrder...)
}

// Lookup finds a System, Subsystem or User by name.
func (p *Project) Lookup(name string) (*Subsystem, bool) {
	s, ok := p.byName[name]
	return s, ok
}

// LookupInterface finds an interface by name.
func (p *Project) LookupInterface(name string) (*Interface, bool) {
	i, ok := p.interfaces[name]
	return i, ok
}

// NewSystem creates the root of the subsystem tree. Only one System may be
// defined per project.
func (p *Project) NewSystem(name string) (*Subsystem, error) {
	if p.system != nil {
		return nil, definitionError(name, "only one System may be defined (already have %q)", p.system.name)
	}
	s, err := p.register(name, KindSystem, nil)
	if err != nil {
		return nil, err
	}
	p.system = s
	return s, nil
}

// NewUser creates a parentless subsystem outside the System tree. Users only
// anchor interfaces.
func (p *Project) NewUser(name string) (*Subsystem, error) {
	s, err := p.register(name, KindUser, nil)
	if err != nil {
		return nil, err
	}
	p.users = append(p.users, s)
	return s, nil
}

// NewDesign creates an unbound design whose literals use the project
// registry.
func (p *Project) NewDesign(name string) *Design {
	return &Design{
		name:       name,
		project:    p,
		properties: make(map[string]PropertyValue),
	}
}

func (p *Project) register(name string, kind SubsystemKind, parent *Subsystem) (*Subsystem, error) {
	if name == "" {
		return nil, definitionError(kind.String(), "name cannot be empty")
	}
	if existing, ok := p.byName[name]; ok {
		return nil, definitionError(name, "name already used by %s", existing)
	}

	s := &Subsystem{
		project: p,
		kind:    kind,
		name:    name,
		parent:  parent,
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	p.byName[name] = s
	p.subsystems = append(p.subsystems, s)
	return s, nil
}

func (p *Project) registerInterface(i *Interface) error {
	if _, ok := p.interfaces[i.name]; ok {
		return definitionError(i.name, "interface name already used")
	}
	p.interfaces[i.name] = i
	p.ifaceOrder = append(p.ifaceOrder, i)
	return nil
}
