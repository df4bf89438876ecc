// Package problems aggregates the diagnostics of one cache pass and turns
// them into a policy verdict.
package problems

import (
	"sync"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/zerr"
)

// Reporter collects problems emitted by the writer, reader and checker during
// one pass. Appends are safe from parallel graph-walk branches.
type Reporter struct {
	mu       sync.Mutex
	problems []domain.Problem
}

// NewReporter creates an empty reporter for one pass.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report appends one problem.
func (r *Reporter) Report(p domain.Problem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.problems = append(r.problems, p)
}

// All returns the accumulated problems verbatim, in report order. The
// presentation layer renders them; the reporter does no formatting.
func (r *Reporter) All() []domain.Problem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Problem, len(r.problems))
	copy(out, r.problems)
	return out
}

// HasErrors reports whether any error-severity problem was raised.
func (r *Reporter) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.problems {
		if p.Severity == domain.SeverityError {
			return true
		}
	}
	return false
}

// Summary counts the accumulated problems by severity.
func (r *Reporter) Summary() domain.ProblemSummary {
	return domain.Summarize(r.All())
}

// Verdict applies the policy: under fail-on-problems any error-severity
// problem fails the pass; under warn-on-problems errors are downgraded to
// advisory output and the pass proceeds.
func (r *Reporter) Verdict(policy domain.ProblemPolicy) error {
	if policy != domain.FailOnProblems {
		return nil
	}
	summary := r.Summary()
	if summary.Errors == 0 {
		return nil
	}
	err := zerr.Wrap(domain.ErrProblemsReported, "cache pass failed")
	return zerr.With(zerr.With(err, "errors", summary.Errors), "warnings", summary.Warnings)
}
