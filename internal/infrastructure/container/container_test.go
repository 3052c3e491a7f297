package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/verity/internal/application/dto"
	"github.com/reglet-dev/verity/internal/config"
	"github.com/reglet-dev/verity/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	assert.NotNil(t, c.Logger())
	assert.Equal(t, "table", c.Config().Format)
	assert.Contains(t, c.FormatterFactory().SupportedFormats(), "sarif")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FailOn = "sometimes"
	_, err := New(Options{Config: cfg})
	assert.Error(t, err)
}

func TestContainer_VerifyStoresReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), templates.Example)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, templates.Render(f, templates.Example, templates.ManifestData{}))
	require.NoError(t, f.Close())

	c, err := New(Options{})
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := c.VerifyModelUseCase().Execute(ctx, dto.VerifyModelRequest{ModelPath: path})
	require.NoError(t, err)

	latest, err := c.Reports().Latest(ctx, resp.Full.ModelName)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, resp.Full.RunID, latest.RunID)
}
