package entities

import "fmt"

// Design is the set of property values realizing one subsystem.
type Design struct {
	project    *Project
	subsystem  *Subsystem
	properties map[string]PropertyValue
	name       string
	order      []string
}

// Name returns the design name.
func (d *Design) Name() string { return d.name }

// Subsystem returns the implemented subsystem, nil until Implements is called.
func (d *Design) Subsystem() *Subsystem { return d.subsystem }

// Project returns the construction context the design belongs to.
func (d *Design) Project() *Project { return d.project }

// SetProperty classifies raw and stores it under name, replacing any
// previous value.
func (d *Design) SetProperty(name string, raw any) error {
	if name == "" {
		return definitionError(d.String(), "property name cannot be empty")
	}
	pv, err := ClassifyProperty(raw, d.project.evaluator)
	if err != nil {
		return fmt.Errorf("%s property %q: %w", d, name, err)
	}
	if _, exists := d.properties[name]; !exists {
		d.order = append(d.order, name)
	}
	d.properties[name] = pv
	return nil
}

// SetProperties sets several properties, stopping at the first error.
func (d *Design) SetProperties(props map[string]any) error {
	for _, name := range sortedKeys(props) {
		if err := d.SetProperty(name, props[name]); err != nil {
			return err
		}
	}
	return nil
}

// Property returns the classified value of name.
func (d *Design) Property(name string) (PropertyValue, bool) {
	pv, ok := d.properties[name]
	return pv, ok
}

// HasProperty reports whether name is defined on d.
func (d *Design) HasProperty(name string) bool {
	_, ok := d.properties[name]
	return ok
}

// PropertyNames returns property names in the order they were first set.
func (d *Design) PropertyNames() []string {
	return append([]string(nil), d.order...)
}

// Implements binds d to s in both directions. Each side may be bound only
// once.
func (d *Design) Implements(s *Subsystem) error {
	if s == nil {
		return definitionError(d.String(), "cannot implement a nil subsystem")
	}
	if d.subsystem != nil {
		return definitionError(d.String(), "already implements %s", d.subsystem)
	}
	if s.design != nil {
		return definitionError(s.String(), "already implemented by %s", s.design)
	}
	if s.project != d.project {
		return definitionError(d.String(), "%s belongs to a different project", s)
	}
	d.subsystem = s
	s.design = d
	return nil
}

func (d *Design) String() string {
	return fmt.Sprintf("Design %q", d.name)
}
