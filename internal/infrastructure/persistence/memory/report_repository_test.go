package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepository_SaveAndFind(t *testing.T) {
	repo := NewReportRepository()
	ctx := context.Background()

	id := values.NewRunID()
	report := execution.NewReportWithID(id, "rover", "1.0.0")

	require.NoError(t, repo.Save(ctx, report))

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Same(t, report, found)

	_, err = repo.FindByID(ctx, values.NewRunID())
	assert.Error(t, err)

	assert.Error(t, repo.Save(ctx, nil))
}

func TestReportRepository_FindByModel(t *testing.T) {
	repo := NewReportRepository()
	ctx := context.Background()

	now := time.Now()
	r1 := execution.NewReport("rover-a", "1.0")
	r1.StartTime = now.Add(-3 * time.Hour)
	r2 := execution.NewReport("rover-a", "1.0")
	r2.StartTime = now.Add(-2 * time.Hour)
	r3 := execution.NewReport("rover-a", "1.0")
	r3.StartTime = now.Add(-1 * time.Hour)
	r4 := execution.NewReport("rover-b", "1.0")

	for _, r := range []*execution.Report{r2, r4, r3, r1} {
		require.NoError(t, repo.Save(ctx, r))
	}

	tests := []struct {
		name  string
		model string
		limit int
		want  []*execution.Report
	}{
		{"all newest first", "rover-a", 0, []*execution.Report{r3, r2, r1}},
		{"limited", "rover-a", 2, []*execution.Report{r3, r2}},
		{"other model", "rover-b", 10, []*execution.Report{r4}},
		{"unknown model", "rover-c", 0, []*execution.Report{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByModel(ctx, tt.model, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportRepository_Latest(t *testing.T) {
	repo := NewReportRepository()
	ctx := context.Background()

	latest, err := repo.Latest(ctx, "rover")
	require.NoError(t, err)
	assert.Nil(t, latest)

	start := time.Now()
	first := execution.NewReport("rover", "1.0")
	first.StartTime = start
	second := execution.NewReport("rover", "1.0")
	second.StartTime = start
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	latest, err = repo.Latest(ctx, "rover")
	require.NoError(t, err)
	assert.Same(t, second, latest, "ties resolve to the last saved")
}

func TestReportRepository_Concurrent(t *testing.T) {
	repo := NewReportRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Save(ctx, execution.NewReport("rover", "1.0"))
			_, _ = repo.Latest(ctx, "rover")
		}()
	}
	wg.Wait()

	all, err := repo.FindByModel(ctx, "rover", 0)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
