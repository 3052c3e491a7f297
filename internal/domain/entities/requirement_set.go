package entities

// RequirementSet is a bag of requirements allocated together. Once
// allocated it accepts no further additions.
type RequirementSet struct {
	name         string
	requirements []*Requirement
	external     bool
	allocated    bool
}

// NewRequirementSet creates an empty set.
func NewRequirementSet(name string) *RequirementSet {
	return &RequirementSet{name: name}
}

// NewExternalRequirementSet creates an empty set of externally imposed
// requirements.
func NewExternalRequirementSet(name string) *RequirementSet {
	return &RequirementSet{name: name, external: true}
}

// Name returns the set name.
func (s *RequirementSet) Name() string { return s.name }

// IsExternal reports whether the set holds external requirements.
func (s *RequirementSet) IsExternal() bool { return s.external }

// IsAllocated reports whether AllocateTo has succeeded.
func (s *RequirementSet) IsAllocated() bool { return s.allocated }

// Requirements returns the members in insertion order.
func (s *RequirementSet) Requirements() []*Requirement {
	return append([]*Requirement(nil), s.requirements...)
}

// Add appends r. Adding after allocation is an OperationError.
func (s *RequirementSet) Add(r *Requirement) error {
	if r == nil {
		return definitionError(s.name, "trying to add a non-requirement to a requirement set")
	}
	if s.allocated {
		return &OperationError{Operation: "add", Reason: "can't add new requirements to a set once you've allocated them"}
	}
	s.requirements = append(s.requirements, r)
	return nil
}

// AllocateTo allocates every member to target. All members are checked
// before any is moved; allocating twice is an OperationError.
func (s *RequirementSet) AllocateTo(target AllocationTarget) error {
	if s.allocated {
		return &OperationError{Operation: "allocate", Reason: "can't allocate a requirement set twice"}
	}
	if isNilTarget(target) {
		return definitionError(s.name, "tried to allocate a requirement set to nothing")
	}
	for _, r := range s.requirements {
		if err := r.checkAllocation(target); err != nil {
			return err
		}
	}
	for _, r := range s.requirements {
		r.applyAllocation(target)
	}
	s.allocated = true
	return nil
}
