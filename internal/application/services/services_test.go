package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/reglet-dev/verity/internal/application/dto"
	apperrors "github.com/reglet-dev/verity/internal/application/errors"
	"github.com/reglet-dev/verity/internal/domain/entities"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLoader builds models in memory, keyed by path.
type stubLoader struct {
	build map[string]func(t *testing.T) *dto.Model
	t     *testing.T
}

func (l *stubLoader) LoadModel(_ context.Context, path string) (*dto.Model, error) {
	b, ok := l.build[path]
	if !ok {
		return nil, apperrors.NewValidationError("manifest", "not found: "+path)
	}
	return b(l.t), nil
}

// memReports is a minimal ReportRepository.
type memReports struct {
	mu      sync.Mutex
	reports []*execution.Report
}

func (m *memReports) Save(_ context.Context, r *execution.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memReports) FindByID(_ context.Context, id values.RunID) (*execution.Report, error) {
	for _, r := range m.reports {
		if r.RunID.Equals(id) {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memReports) FindByModel(_ context.Context, name string, _ int) ([]*execution.Report, error) {
	var out []*execution.Report
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].ModelName == name {
			out = append(out, m.reports[i])
		}
	}
	return out, nil
}

func (m *memReports) Latest(ctx context.Context, name string) (*execution.Report, error) {
	all, _ := m.FindByModel(ctx, name, 1)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

// rover builds a two-subsystem model whose mass is 40 kg, with a mass limit
// requirement on the system.
func rover(limit string) func(t *testing.T) *dto.Model {
	return func(t *testing.T) *dto.Model {
		t.Helper()
		p := entities.NewProject("rover", nil)
		sys, err := p.NewSystem("Rover")
		require.NoError(t, err)
		body, err := entities.NewSubsystem("body", sys)
		require.NoError(t, err)
		wheels, err := entities.NewSubsystem("wheels", sys)
		require.NoError(t, err)

		for s, props := range map[*entities.Subsystem]map[string]any{
			sys:    {"mass": "sum children"},
			body:   {"mass": "25kg", "ground": "wheels.clearance"},
			wheels: {"mass": "15kg"},
		} {
			d := p.NewDesign(s.Name() + " design")
			require.NoError(t, d.SetProperties(props))
			require.NoError(t, d.Implements(s))
		}

		light, err := entities.NewRequirement("shall be light", map[string]any{"mass__lte": limit}, entities.WithID("light"))
		require.NoError(t, err)
		require.NoError(t, light.AllocateTo(sys))
		loose, err := entities.NewRequirement("shall be loved", nil, entities.WithID("loved"))
		require.NoError(t, err)

		return &dto.Model{
			Project:      p,
			Requirements: []*entities.Requirement{light, loose},
			Name:         "Rover",
			Version:      "1.0.0",
			Source:       "rover.yaml",
		}
	}
}

func Test_VerifyModel_Execute(t *testing.T) {
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{"ok.yaml": rover("50kg")}}
	uc := NewVerifyModelUseCase(loader, nil, nil, nil)

	resp, err := uc.Execute(context.Background(), dto.VerifyModelRequest{ModelPath: "ok.yaml"})
	require.NoError(t, err)

	assert.Equal(t, "Rover", resp.Full.ModelName)
	assert.Equal(t, "rover.yaml", resp.Full.Source)
	assert.Equal(t, 1, resp.Full.Summary.Passed)
	assert.Equal(t, resp.Full.Summary, resp.Report.Summary, "no filters keeps everything")
	assert.True(t, resp.Diff.IsEmpty())
}

func Test_VerifyModel_Filters(t *testing.T) {
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{"bad.yaml": rover("30kg")}}
	uc := NewVerifyModelUseCase(loader, nil, nil, nil)

	resp, err := uc.Execute(context.Background(), dto.VerifyModelRequest{
		ModelPath: "bad.yaml",
		Filters:   dto.FilterOptions{MinSeverity: "error"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Report.Results, 1)
	assert.Equal(t, execution.CodeFailed, resp.Report.Results[0].Code)
	assert.Greater(t, resp.Full.Summary.Total, 1)

	resp, err = uc.Execute(context.Background(), dto.VerifyModelRequest{
		ModelPath: "bad.yaml",
		Filters:   dto.FilterOptions{FilterExpression: `owner_kind == "subsystem"`},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Report.Results, 2, "body and wheels have no requirements")

	tests := []struct {
		name    string
		filters dto.FilterOptions
		opts    dto.VerifyOptions
	}{
		{"bad severity", dto.FilterOptions{MinSeverity: "fatal"}, dto.VerifyOptions{}},
		{"bad expression", dto.FilterOptions{FilterExpression: "code =="}, dto.VerifyOptions{}},
		{"bad scope", dto.FilterOptions{}, dto.VerifyOptions{ReferenceScope: "global"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), dto.VerifyModelRequest{ModelPath: "bad.yaml", Filters: tt.filters, Options: tt.opts})
			var valErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}
}

func Test_VerifyModel_IncludeUnallocated(t *testing.T) {
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{"ok.yaml": rover("50kg")}}
	uc := NewVerifyModelUseCase(loader, nil, nil, nil)

	resp, err := uc.Execute(context.Background(), dto.VerifyModelRequest{
		ModelPath: "ok.yaml",
		Options:   dto.VerifyOptions{IncludeUnallocated: true},
		Filters:   dto.FilterOptions{Codes: []string{execution.CodeUnallocated}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Report.Results, 1)
	assert.Equal(t, "loved", resp.Report.Results[0].OwnerID)
}

func Test_VerifyModel_StoresAndDiffs(t *testing.T) {
	limit := "50kg"
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{
		"m.yaml": func(t *testing.T) *dto.Model { return rover(limit)(t) },
	}}
	repo := &memReports{}
	uc := NewVerifyModelUseCase(loader, repo, nil, nil)

	first, err := uc.Execute(context.Background(), dto.VerifyModelRequest{ModelPath: "m.yaml"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Diff.Introduced, "first run introduces its warnings")

	limit = "30kg"
	second, err := uc.Execute(context.Background(), dto.VerifyModelRequest{ModelPath: "m.yaml"})
	require.NoError(t, err)
	require.Len(t, second.Diff.Introduced, 1)
	assert.Equal(t, execution.CodeFailed, second.Diff.Introduced[0].Code)
	assert.Empty(t, second.Diff.Resolved)
	assert.Len(t, repo.reports, 2)
}

func Test_VerifyModel_LoadError(t *testing.T) {
	uc := NewVerifyModelUseCase(&stubLoader{t: t}, nil, nil, nil)
	_, err := uc.Execute(context.Background(), dto.VerifyModelRequest{ModelPath: "missing.yaml"})
	assert.Error(t, err)
}

func Test_ResolveProperty_Execute(t *testing.T) {
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{"ok.yaml": rover("50kg")}}
	uc := NewResolvePropertyUseCase(loader, nil)

	resp, err := uc.Execute(context.Background(), dto.ResolvePropertyRequest{ModelPath: "ok.yaml", Subsystem: "Rover", Property: "mass"})
	require.NoError(t, err)
	assert.Equal(t, "40 kg", resp.Value)
	assert.Equal(t, "aggregate", resp.Kind)
	assert.Equal(t, "sum children", resp.Definition)

	tests := []struct {
		name      string
		subsystem string
		property  string
	}{
		{"missing subsystem", "tail", "mass"},
		{"missing property", "body", "volume"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), dto.ResolvePropertyRequest{ModelPath: "ok.yaml", Subsystem: tt.subsystem, Property: tt.property})
			var valErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}

	_, err = uc.Execute(context.Background(), dto.ResolvePropertyRequest{ModelPath: "ok.yaml", Subsystem: "body", Property: "ground"})
	assert.Error(t, err, "wheels is a sibling of body")
}

func Test_ValidateModels_Execute(t *testing.T) {
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{
		"a.yaml": rover("50kg"),
		"b.yaml": rover("30kg"),
	}}
	uc := NewValidateModelsUseCase(loader, nil)

	resp, err := uc.Execute(context.Background(), dto.ValidateModelsRequest{
		Paths:             []string{"a.yaml", "missing.yaml", "b.yaml"},
		Concurrency:       2,
		ResolveProperties: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.False(t, resp.Valid())

	assert.Equal(t, "a.yaml", resp.Results[0].Path)
	assert.Equal(t, "Rover", resp.Results[0].Model)
	assert.Equal(t, 4, resp.Results[0].Properties)
	assert.Len(t, resp.Results[0].Errors, 1, "body.ground references a sibling")

	assert.False(t, resp.Results[1].Valid())
	assert.Empty(t, resp.Results[1].Model)
}

func Test_ValidateModels_Cancelled(t *testing.T) {
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{"a.yaml": rover("50kg")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewValidateModelsUseCase(loader, nil).Execute(ctx, dto.ValidateModelsRequest{Paths: []string{"a.yaml"}})
	assert.ErrorIs(t, err, context.Canceled)
}

// siblings builds a system whose child "A" derives its width from its
// sibling "B".
func siblings(t *testing.T) *dto.Model {
	t.Helper()
	p := entities.NewProject("frames", nil)
	sys, err := p.NewSystem("Frame")
	require.NoError(t, err)
	a, err := entities.NewSubsystem("A", sys)
	require.NoError(t, err)
	b, err := entities.NewSubsystem("B", sys)
	require.NoError(t, err)

	for s, props := range map[*entities.Subsystem]map[string]any{
		a: {"w": "B.w * 2"},
		b: {"w": "3m"},
	} {
		d := p.NewDesign(s.Name() + " design")
		require.NoError(t, d.SetProperties(props))
		require.NoError(t, d.Implements(s))
	}
	return &dto.Model{Project: p, Name: "Frame", Source: "frame.yaml"}
}

func Test_ValidateModels_ReferenceScope(t *testing.T) {
	loader := &stubLoader{t: t, build: map[string]func(*testing.T) *dto.Model{"frame.yaml": siblings}}
	uc := NewValidateModelsUseCase(loader, nil)

	tests := []struct {
		scope      string
		wantErrors int
	}{
		{"", 1},
		{"narrow", 1},
		{"extended", 0},
	}
	for _, tt := range tests {
		t.Run("scope "+tt.scope, func(t *testing.T) {
			resp, err := uc.Execute(context.Background(), dto.ValidateModelsRequest{
				Paths:             []string{"frame.yaml"},
				ReferenceScope:    tt.scope,
				ResolveProperties: true,
			})
			require.NoError(t, err)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, 2, resp.Results[0].Properties)
			assert.Len(t, resp.Results[0].Errors, tt.wantErrors, resp.Results[0].Errors)
		})
	}

	_, err := uc.Execute(context.Background(), dto.ValidateModelsRequest{Paths: []string{"frame.yaml"}, ReferenceScope: "global"})
	var valErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &valErr)
}
