package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/manifest.schema.json
var manifestSchemaJSON []byte

const manifestSchemaURL = "manifest.schema.json"

var (
	manifestSchema     *jsonschema.Schema
	manifestSchemaErr  error
	manifestSchemaOnce sync.Once
)

// ManifestSchema returns the raw JSON schema manifests are validated against.
func ManifestSchema() []byte {
	return append([]byte(nil), manifestSchemaJSON...)
}

func compiledSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(manifestSchemaURL, bytes.NewReader(manifestSchemaJSON)); err != nil {
			manifestSchemaErr = fmt.Errorf("failed to add manifest schema: %w", err)
			return
		}
		manifestSchema, manifestSchemaErr = compiler.Compile(manifestSchemaURL)
	})
	return manifestSchema, manifestSchemaErr
}

// ValidateSchema checks raw manifest YAML against the manifest schema.
func ValidateSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("manifest validation failed: %w", err)
	}
	return nil
}

// formatSchemaValidationError flattens the cause tree into one line per
// failing location.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var problems []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		// Leaf causes carry the useful messages; the root only says
		// "doesn't validate with ...".
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			problems = append(problems, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(problems) == 0 {
		problems = append(problems, strings.TrimSpace(err.Error()))
	}
	return &ManifestError{Problems: problems}
}
