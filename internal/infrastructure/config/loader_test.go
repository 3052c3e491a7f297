package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/reglet-dev/verity/internal/application/errors"
	"github.com/reglet-dev/verity/internal/domain/entities"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/quantity"
	"github.com/reglet-dev/verity/internal/domain/services"
	"github.com/reglet-dev/verity/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carManifest = `
vars:
  limits:
    mass: 50kg
  wheel_mass: 2stone
model:
  name: Car
  version: 1.2.0
  requires: ">= 0.1.0"
units:
  - symbol: stone
    definition: 6.35029kg
system:
  name: car
  design:
    properties:
      mass: sum children
  children:
    - name: chassis
      design:
        properties:
          mass: 20kg
          width: 1.8m
    - name: wheels
      design:
        name: alloy wheels
        properties:
          mass: "{{ .vars.wheel_mass }}"
users:
  - name: driver
interfaces:
  - connects: [driver, chassis]
requirements:
  - id: wheels-light
    text: Wheels shall be light
    derived_from: light
    constraint:
      mass__lte: 15kg
    allocate: [wheels]
  - id: light
    text: The car shall weigh at most {{ .vars.limits.mass }}
    constraint:
      mass__lte: "{{ .vars.limits.mass }}"
    allocate: [car]
  - id: comfy
    text: The seat shall be comfortable
requirement_sets:
  - name: driver needs
    kind: external
    allocate_to: driver <-> chassis
    requirements: [comfy]
`

func newTestLoader() *ModelLoader {
	return NewModelLoader(nil, WithVersion(version.Info{Version: "0.3.0"}))
}

func Test_LoadModelFromBytes(t *testing.T) {
	model, err := newTestLoader().LoadModelFromBytes(context.Background(), []byte(carManifest), "car.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Car", model.Name)
	assert.Equal(t, "1.2.0", model.Version)
	assert.Equal(t, "car.yaml", model.Source)

	p := model.Project
	assert.NotSame(t, quantity.DefaultRegistry(), p.Registry(), "custom units use a private registry")
	_, err = p.Registry().Lookup("stone")
	require.NoError(t, err)
	_, err = quantity.DefaultRegistry().Lookup("stone")
	assert.Error(t, err, "stone must not leak into the default registry")

	chassis, ok := p.Lookup("chassis")
	require.True(t, ok)
	assert.Equal(t, "chassis design", chassis.Design().Name())
	wheels, ok := p.Lookup("wheels")
	require.True(t, ok)
	assert.Equal(t, "alloy wheels", wheels.Design().Name())
	mass, ok := wheels.Design().Property("mass")
	require.True(t, ok)
	assert.Equal(t, entities.PropertyLiteral, mass.Kind())
	assert.Equal(t, "2stone", mass.Text())

	_, ok = p.LookupInterface("driver <-> chassis")
	assert.True(t, ok)

	require.Len(t, model.Requirements, 3)
	derived, light, comfy := model.Requirements[0], model.Requirements[1], model.Requirements[2]
	assert.Equal(t, "wheels-light", derived.ID())
	assert.Same(t, light, derived.Parent())
	assert.Equal(t, entities.RequirementDerived, derived.Kind())
	assert.Equal(t, "The car shall weigh at most 50kg", light.Text())
	assert.Equal(t, "50kg", light.Parameter().Threshold)
	assert.Equal(t, "car", light.AllocatedTo().Name())
	assert.Equal(t, "driver <-> chassis", comfy.AllocatedTo().Name())
	assert.Empty(t, model.Unallocated())
}

func Test_LoadModel_Verifies(t *testing.T) {
	model, err := newTestLoader().LoadModelFromBytes(context.Background(), []byte(carManifest), "car.yaml")
	require.NoError(t, err)

	results := services.NewVerifier(nil, nil).Verify(model.Project.System())
	passed := map[string]bool{}
	for _, r := range results {
		assert.NotEqual(t, execution.CodeFailed, r.Code, r.Message)
		if r.Code == execution.CodePassed {
			passed[r.OwnerID] = true
		}
	}
	assert.True(t, passed["light"], "20kg + 2 stone is under 50kg")
	assert.True(t, passed["wheels-light"])
}

func Test_LoadModel_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "car.yaml")
	require.NoError(t, os.WriteFile(path, []byte(carManifest), 0o600))

	model, err := newTestLoader().LoadModel(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, model.Source)

	_, err = newTestLoader().LoadModel(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func Test_LoadModel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestLoader().LoadModelFromBytes(ctx, []byte(carManifest), "car.yaml")
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_LoadModel_InvalidManifests(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		contains string
	}{
		{
			name:     "missing system",
			yaml:     "model: {name: x}\n",
			contains: "system",
		},
		{
			name:     "unknown field",
			yaml:     "system: {name: car, colour: red}\n",
			contains: "colour",
		},
		{
			name:     "property must be scalar",
			yaml:     "system: {name: car, design: {properties: {mass: [1, 2]}}}\n",
			contains: "/system/design/properties/mass",
		},
		{
			name: "duplicate requirement id",
			yaml: `
system: {name: car}
requirements:
  - {id: r1, text: one}
  - {id: r1, text: two}
`,
			contains: `duplicate requirement id "r1"`,
		},
		{
			name: "unknown parent",
			yaml: `
system: {name: car}
requirements:
  - {id: r1, text: one, derived_from: r0}
`,
			contains: `unknown requirement "r0"`,
		},
		{
			name: "bad version",
			yaml: `
model: {version: one}
system: {name: car}
`,
			contains: "not a semantic version",
		},
		{
			name: "undefined variable",
			yaml: `
system: {name: car, design: {properties: {mass: "{{ .vars.nope }}"}}}
`,
			contains: "variable not found: nope",
		},
		{
			name: "user with children",
			yaml: `
system: {name: car}
users: [{name: driver, children: [{name: hand}]}]
`,
			contains: "cannot have children",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader().LoadModelFromBytes(context.Background(), []byte(tt.yaml), "bad.yaml")
			require.Error(t, err)

			var valErr *apperrors.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Message+" "+joinDetails(valErr.Details), tt.contains)
		})
	}
}

func Test_LoadModel_InvalidModels(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		contains string
	}{
		{
			name: "duplicate subsystem",
			yaml: `
system: {name: car, children: [{name: wheel}, {name: wheel}]}
`,
			contains: "name already used",
		},
		{
			name: "unknown allocation target",
			yaml: `
system: {name: car}
requirements:
  - {id: r1, text: one, allocate: [boot]}
`,
			contains: `unknown allocation target "boot"`,
		},
		{
			name: "ambiguous target",
			yaml: `
system: {name: car, children: [{name: a}, {name: b}, {name: bus}]}
interfaces:
  - {name: bus, connects: [a, b]}
requirements:
  - {id: r1, text: one, allocate: [bus]}
`,
			contains: "both a subsystem and an interface",
		},
		{
			name: "circular derivation",
			yaml: `
system: {name: car}
requirements:
  - {id: r1, text: one, derived_from: r2}
  - {id: r2, text: two, derived_from: r1}
`,
			contains: "circular derivation among requirements: [r1 r2]",
		},
		{
			name: "two constraints",
			yaml: `
system: {name: car}
requirements:
  - {id: r1, text: one, constraint: {mass__lte: 1kg, width__lte: 1m}}
`,
			contains: "r1",
		},
		{
			name: "bad unit",
			yaml: `
units: [{symbol: smoot, definition: "1.7 + x"}]
system: {name: car}
`,
			contains: "unit smoot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader().LoadModelFromBytes(context.Background(), []byte(tt.yaml), "bad.yaml")
			require.Error(t, err)

			var modelErr *apperrors.ModelError
			require.ErrorAs(t, err, &modelErr)
			assert.Equal(t, "bad.yaml", modelErr.Path)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func Test_LoadModel_Requires(t *testing.T) {
	manifest := []byte("model: {requires: \">= 2.0.0\"}\nsystem: {name: car}\n")

	_, err := newTestLoader().LoadModelFromBytes(context.Background(), manifest, "car.yaml")
	var valErr *apperrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Message, "requires verity >= 2.0.0")

	dev := NewModelLoader(nil, WithVersion(version.Info{Version: "dev"}))
	_, err = dev.LoadModelFromBytes(context.Background(), manifest, "car.yaml")
	assert.NoError(t, err)
}

func Test_Substitute_KeepsType(t *testing.T) {
	m := &Manifest{
		Vars: map[string]any{"n": uint64(4), "flag": true},
		System: SubsystemSpec{Name: "car", Design: &DesignSpec{Properties: map[string]any{
			"wheels": "{{ .vars.n }}",
			"legal":  "{{.vars.flag}}",
			"label":  "has {{ .vars.n }} wheels",
		}}},
	}
	require.NoError(t, NewVariableSubstitutor().Substitute(m))

	props := m.System.Design.Properties
	assert.Equal(t, uint64(4), props["wheels"])
	assert.Equal(t, true, props["legal"])
	assert.Equal(t, "has 4 wheels", props["label"])
}

func Test_Substitute_MapVariable(t *testing.T) {
	m := &Manifest{
		Vars:   map[string]any{"limits": map[string]any{"mass": "1kg"}},
		System: SubsystemSpec{Name: "car", Design: &DesignSpec{Properties: map[string]any{"mass": "{{ .vars.limits }}"}}},
	}
	assert.ErrorContains(t, NewVariableSubstitutor().Substitute(m), "is a map")
}

func Test_DerivationOrder(t *testing.T) {
	specs := []RequirementSpec{
		{ID: "c", DerivedFrom: "b"},
		{ID: "b", DerivedFrom: "a"},
		{ID: "x"},
		{ID: "a"},
	}
	order, err := derivationOrder(specs)
	require.NoError(t, err)

	var ids []string
	for _, i := range order {
		ids = append(ids, specs[i].ID)
	}
	assert.Equal(t, []string{"x", "a", "b", "c"}, ids)
}

func Test_ManifestSchema(t *testing.T) {
	assert.Contains(t, string(ManifestSchema()), `"$schema"`)
	require.NoError(t, ValidateSchema([]byte(carManifest)))
}

func joinDetails(details []string) string {
	out := ""
	for _, d := range details {
		out += d + "\n"
	}
	return out
}
