// Package dto contains data transfer objects for application layer use cases.
package dto

// VerifyModelRequest encapsulates all inputs needed to verify a model.
type VerifyModelRequest struct {
	ModelPath string
	Options   VerifyOptions
	Filters   FilterOptions
	Metadata  RequestMetadata
}

// VerifyOptions controls how a model is verified.
type VerifyOptions struct {
	// ReferenceScope is "narrow" (default) or "extended".
	ReferenceScope string

	// IncludeUnallocated also verifies requirements declared in the
	// manifest but never allocated.
	IncludeUnallocated bool
}

// FilterOptions defines which results are reported. Filtering never changes
// what is verified or stored.
type FilterOptions struct {
	FilterExpression string
	MinSeverity      string
	Codes            []string
	OwnerKinds       []string
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// ResolvePropertyRequest asks for the value of one design property.
type ResolvePropertyRequest struct {
	ModelPath      string
	Subsystem      string
	Property       string
	ReferenceScope string
}

// ValidateModelsRequest lists manifests to check.
type ValidateModelsRequest struct {
	Paths []string

	// Concurrency bounds how many manifests are checked at once (0 = no limit).
	Concurrency int

	// ReferenceScope selects which subsystems a property may reference
	// (narrow or extended). Empty means narrow.
	ReferenceScope string

	// ResolveProperties also resolves every design property.
	ResolveProperties bool
}
