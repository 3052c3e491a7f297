package services

import (
	"testing"

	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportOf(results ...execution.VerificationResult) *execution.Report {
	r := execution.NewReport("Sol", "1.0.0")
	r.AddResults(results...)
	r.Finalize()
	return r
}

func Test_DiffReports(t *testing.T) {
	fixture := filterFixture()
	warn, failed, passed := fixture[0], fixture[1], fixture[2]

	fixed := passed
	fixed.Owner = failed.Owner
	fixed.OwnerID = failed.OwnerID
	fixed.Property = failed.Property

	t.Run("first run", func(t *testing.T) {
		diff := DiffReports(nil, reportOf(warn, failed, passed))
		assert.Equal(t, []string{"no-requirements", "failed"}, codes(diff.Introduced))
		assert.Empty(t, diff.Resolved)
	})

	t.Run("unchanged", func(t *testing.T) {
		diff := DiffReports(reportOf(warn, failed), reportOf(warn, failed))
		assert.True(t, diff.IsEmpty())
	})

	t.Run("failure fixed", func(t *testing.T) {
		diff := DiffReports(reportOf(warn, failed), reportOf(warn, fixed))
		assert.Empty(t, diff.Introduced, "info results are not tracked")
		require.Len(t, diff.Resolved, 1)
		assert.Equal(t, failed.Message, diff.Resolved[0].Message)
	})

	t.Run("message change counts as new", func(t *testing.T) {
		worse := failed
		worse.Message = "Requirement failed: 45 kg lte 30 kg"

		diff := DiffReports(reportOf(failed), reportOf(worse))
		require.Len(t, diff.Introduced, 1)
		require.Len(t, diff.Resolved, 1)
		assert.Equal(t, worse.Message, diff.Introduced[0].Message)
	})
}
