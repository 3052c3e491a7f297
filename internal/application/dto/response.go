package dto

import (
	"time"

	"github.com/reglet-dev/verity/internal/domain/entities"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/services"
)

// Model is a loaded and built model graph with its manifest metadata.
type Model struct {
	Project *entities.Project

	// Requirements lists every requirement the manifest declares, in file
	// order, including derived and unallocated ones.
	Requirements []*entities.Requirement

	Name        string
	Version     string
	Description string
	Source      string
}

// Unallocated returns the declared requirements not allocated to anything.
func (m *Model) Unallocated() []*entities.Requirement {
	var out []*entities.Requirement
	for _, r := range m.Requirements {
		if r.AllocatedTo() == nil {
			out = append(out, r)
		}
	}
	return out
}

// VerifyModelResponse contains the result of verifying a model.
type VerifyModelResponse struct {
	// Report holds the results that passed the request filters.
	Report *execution.Report

	// Full is the unfiltered report, as stored.
	Full *execution.Report

	// Diff compares Full with the previous report of the same model in
	// this session.
	Diff services.ReportDiff

	Metadata ResponseMetadata
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// ResolvePropertyResponse describes one resolved property.
type ResolvePropertyResponse struct {
	Subsystem  string   `json:"subsystem" yaml:"subsystem"`
	Design     string   `json:"design" yaml:"design"`
	Property   string   `json:"property" yaml:"property"`
	Kind       string   `json:"kind" yaml:"kind"`
	Definition string   `json:"definition" yaml:"definition"`
	Value      string   `json:"value" yaml:"value"`
	Canonical  string   `json:"canonical" yaml:"canonical"`
	Exclusions []string `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
}

// ValidateModelsResponse contains one entry per requested manifest, in
// request order.
type ValidateModelsResponse struct {
	Results []ModelValidation
}

// Valid reports whether every manifest passed.
func (r *ValidateModelsResponse) Valid() bool {
	for _, v := range r.Results {
		if !v.Valid() {
			return false
		}
	}
	return true
}

// ModelValidation is the outcome of checking one manifest.
type ModelValidation struct {
	Path   string
	Model  string
	Errors []string
	// Properties counts the design properties resolved, when requested.
	Properties int
}

// Valid reports whether the manifest had no errors.
func (v ModelValidation) Valid() bool {
	return len(v.Errors) == 0
}
