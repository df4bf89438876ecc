package problems_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/engine/problems"
)

func TestReporter_AccumulatesInOrder(t *testing.T) {
	r := problems.NewReporter()
	r.Report(domain.Problem{Severity: domain.SeverityWarn, Message: "first"})
	r.Report(domain.Problem{Severity: domain.SeverityError, Message: "second"})

	all := r.All()
	require.Len(t, all, 2)
	require.Equal(t, "first", all[0].Message)
	require.Equal(t, "second", all[1].Message)
	require.True(t, r.HasErrors())
	require.Equal(t, domain.ProblemSummary{Warnings: 1, Errors: 1}, r.Summary())
}

func TestReporter_VerdictPolicies(t *testing.T) {
	withError := problems.NewReporter()
	withError.Report(domain.Problem{Severity: domain.SeverityError, Message: "boom"})

	// Warn-on-problems downgrades everything.
	require.NoError(t, withError.Verdict(domain.WarnOnProblems))
	// Fail-on-problems fails on errors.
	require.ErrorIs(t, withError.Verdict(domain.FailOnProblems), domain.ErrProblemsReported)

	// Warnings never fail the pass, under either policy.
	warnsOnly := problems.NewReporter()
	warnsOnly.Report(domain.Problem{Severity: domain.SeverityWarn, Message: "meh"})
	require.NoError(t, warnsOnly.Verdict(domain.FailOnProblems))
}

func TestReporter_ConcurrentReports(t *testing.T) {
	r := problems.NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Report(domain.Problem{Severity: domain.SeverityWarn, Message: "w"})
			}
		}()
	}
	wg.Wait()

	require.Len(t, r.All(), 400)
	require.False(t, r.HasErrors())
}
