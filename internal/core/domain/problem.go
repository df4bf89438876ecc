package domain

// Severity classifies how serious a problem is.
type Severity uint8

const (
	// SeverityWarn marks a problem the pass can proceed past.
	SeverityWarn Severity = iota
	// SeverityError marks a problem that blocks committing a cache entry.
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warn"
}

// ProblemPolicy decides whether error-severity problems fail the pass or are
// downgraded to advisory output.
type ProblemPolicy uint8

const (
	// WarnOnProblems downgrades error problems and lets the pass proceed with
	// tombstoned nodes.
	WarnOnProblems ProblemPolicy = iota
	// FailOnProblems turns any error problem into a pass failure.
	FailOnProblems
)

// Problem is a structured diagnostic raised while encoding, decoding or
// invalidating a cache pass. Problems accumulate; they never abort a graph
// walk on their own.
type Problem struct {
	Severity Severity
	Message  string
	// Path is the dotted path from the nearest root to the offending node.
	Path string
	// Cause is the underlying error, when there is one.
	Cause error
}

// ProblemSummary is the per-severity count persisted with a cache entry.
type ProblemSummary struct {
	Warnings int
	Errors   int
}

// Summarize counts problems by severity.
func Summarize(problems []Problem) ProblemSummary {
	var s ProblemSummary
	for _, p := range problems {
		if p.Severity == SeverityError {
			s.Errors++
		} else {
			s.Warnings++
		}
	}
	return s
}
