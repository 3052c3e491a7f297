package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/services"
	"github.com/reglet-dev/verity/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestTemplates_Load(t *testing.T) {
	t.Parallel()

	tmpl, err := ManifestTemplates()
	require.NoError(t, err)

	for _, name := range []string{Model, Example} {
		assert.NotNil(t, tmpl.Lookup(name), "template %s should be loaded", name)
	}
}

func TestRender_Unknown(t *testing.T) {
	t.Parallel()
	err := Render(&bytes.Buffer{}, "plugin.go", ManifestData{})
	assert.ErrorContains(t, err, "unknown template")
}

func TestRender_Model(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Model, ManifestData{
		Name:       `Rover "One"`,
		System:     "rover",
		Subsystems: []string{"body", "wheels"},
		Users:      []string{"operator"},
		MassLimit:  "50kg",
	}))
	assert.Contains(t, buf.String(), `name: "Rover \"One\""`)
	assert.Contains(t, buf.String(), `mass__lte: "{{ .vars.mass_limit }}"`)

	model, err := config.NewModelLoader(nil).LoadModelFromBytes(context.Background(), buf.Bytes(), "model.yaml")
	require.NoError(t, err)
	assert.Len(t, model.Project.Subsystems(), 4)
	assert.Len(t, model.Project.Interfaces(), 1)

	results := services.NewVerifier(nil, nil).Verify(model.Project.System())
	assert.Contains(t, codes(results), execution.CodePassed, "2kg is under 50kg")
}

func TestRender_ModelDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Model, ManifestData{}))

	model, err := config.NewModelLoader(nil).LoadModelFromBytes(context.Background(), buf.Bytes(), "model.yaml")
	require.NoError(t, err)
	assert.Equal(t, "My System", model.Name)
	assert.Equal(t, "0.1.0", model.Version)
}

func TestRender_Example(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Example, ManifestData{FileName: "sol.yaml"}))
	assert.Contains(t, buf.String(), "verity verify sol.yaml")

	model, err := config.NewModelLoader(nil).LoadModelFromBytes(context.Background(), buf.Bytes(), "sol.yaml")
	require.NoError(t, err)

	results := services.NewVerifier(nil, nil).Verify(model.Project.System())
	passed := 0
	for _, r := range results {
		assert.NotEqual(t, execution.CodeFailed, r.Code, r.Message)
		assert.NotEqual(t, execution.CodeResolutionFailed, r.Code, r.Message)
		if r.IsPass() {
			passed++
		}
	}
	assert.Equal(t, 3, passed, "width, mass and cell mass pass")
}

func codes(results []execution.VerificationResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Code
	}
	return out
}
