// Package orchestrator is the top-level controller of a cache pass: it
// decides load-or-build, drives the other components, and commits a new cache
// entry after a successful build.
package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"go.trai.ch/recall/internal/codec"
	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/core/ports"
	"go.trai.ch/recall/internal/engine/fingerprint"
	"go.trai.ch/recall/internal/engine/graph"
	"go.trai.ch/recall/internal/engine/problems"
	"go.trai.ch/zerr"
)

// State names a phase of the pass state machine.
type State string

const (
	// StateChecking is deciding hit versus miss.
	StateChecking State = "Checking"
	// StateRestoring is decoding a stored graph.
	StateRestoring State = "Restoring"
	// StateConfiguring is running the configuration phase from scratch.
	StateConfiguring State = "Configuring"
	// StatePersisting is committing a freshly configured graph.
	StatePersisting State = "Persisting"
	// StateReady means the model is available.
	StateReady State = "Ready"
)

// Source says where the ready model came from.
type Source string

const (
	// SourceRestored means the model was decoded from the cache.
	SourceRestored Source = "restored"
	// SourceConfigured means configuration ran in full.
	SourceConfigured Source = "configured"
)

// ConfigureFunc runs the configuration phase, routing every external read
// through the observer.
type ConfigureFunc func(ctx context.Context, obs ports.Observer) ([]*domain.WorkUnit, error)

// PassReport is the outcome of one cache pass, handed to the presentation
// layer verbatim.
type PassReport struct {
	Source     Source
	MissReason string
	EntryID    uuid.UUID
	Problems   []domain.Problem
}

// Orchestrator coordinates one cache pass at a time. State transitions are
// single-writer; there is no cross-process coordination because the store is
// local to one build root.
type Orchestrator struct {
	store     ports.EntryStore
	sources   *fingerprint.Sources
	registry  *codec.Registry
	policy    domain.ProblemPolicy
	telemetry ports.Telemetry
	logger    ports.Logger

	parallelism int
}

// Options configures an orchestrator.
type Options struct {
	Store       ports.EntryStore
	Sources     *fingerprint.Sources
	Registry    *codec.Registry
	Policy      domain.ProblemPolicy
	Telemetry   ports.Telemetry
	Logger      ports.Logger
	Parallelism int
}

// New creates an orchestrator. A nil registry gets the built-in codecs.
func New(opts Options) *Orchestrator {
	reg := opts.Registry
	if reg == nil {
		reg = codec.NewRegistry()
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry = nopTelemetry{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Orchestrator{
		store:       opts.Store,
		sources:     opts.Sources,
		registry:    reg,
		policy:      opts.Policy,
		telemetry:   telemetry,
		logger:      logger,
		parallelism: parallelism,
	}
}

// Execute runs one pass: check, then restore on a hit or configure-and-persist
// on a miss. The returned model is ready for the execution engine either way,
// unless the policy escalates problems into a failure.
func (o *Orchestrator) Execute(ctx context.Context, configure ConfigureFunc) (*PassReport, []*domain.WorkUnit, error) {
	report := &PassReport{}

	checkReporter := problems.NewReporter()
	entry, verdict := o.check(ctx, checkReporter)
	report.Problems = append(report.Problems, checkReporter.All()...)

	if verdict.Hit {
		o.logger.Info("configuration cache hit")
		restoreReporter := problems.NewReporter()
		units, ok := o.restore(ctx, entry, restoreReporter)
		report.Problems = append(report.Problems, restoreReporter.All()...)
		if err := ctx.Err(); err != nil {
			return nil, nil, zerr.Wrap(domain.ErrPassAbandoned, "interrupted while restoring")
		}
		if ok {
			report.Source = SourceRestored
			report.EntryID = entry.EntryID
			return report, units, nil
		}
		// Fatal problems during restore: the restored graph is discarded and
		// configuration runs in full, judged on its own problems.
		verdict = domain.Verdict{Reason: "restore failed"}
	}

	report.MissReason = verdict.Reason
	o.logger.Info("configuration cache miss: " + verdict.Reason)

	passReporter := problems.NewReporter()
	units, freshEntry, err := o.configureAndPersist(ctx, configure, passReporter)
	report.Problems = append(report.Problems, passReporter.All()...)
	if err != nil {
		return nil, nil, err
	}
	report.Source = SourceConfigured
	if freshEntry != nil {
		report.EntryID = freshEntry.EntryID
	}
	return report, units, passReporter.Verdict(o.policy)
}

// Check runs only the invalidation phase, for diagnostics.
func (o *Orchestrator) Check(ctx context.Context) domain.Verdict {
	reporter := problems.NewReporter()
	_, verdict := o.check(ctx, reporter)
	return verdict
}

func (o *Orchestrator) check(ctx context.Context, reporter *problems.Reporter) (*domain.CacheEntry, domain.Verdict) {
	ctx, vtx := o.telemetry.Record(ctx, string(StateChecking))
	defer func() { vtx.Complete(nil) }()

	entry, err := o.store.Load()
	if err != nil {
		// A corrupt or unreadable entry degrades to a miss, never a fault.
		reporter.Report(domain.Problem{
			Severity: domain.SeverityError,
			Message:  "stored cache entry could not be read",
			Cause:    err,
		})
		return nil, domain.Verdict{Reason: "entry unreadable"}
	}

	checker := fingerprint.NewChecker(o.sources, o.parallelism)
	verdict := checker.Check(ctx, entry)
	if verdict.Hit {
		vtx.Cached()
	} else {
		vtx.Log("cache miss: " + verdict.Reason)
	}
	return entry, verdict
}

func (o *Orchestrator) restore(ctx context.Context, entry *domain.CacheEntry, reporter *problems.Reporter) ([]*domain.WorkUnit, bool) {
	ctx, vtx := o.telemetry.Record(ctx, string(StateRestoring))

	reader := graph.NewReader(o.registry, reporter)
	units, err := reader.Read(ctx, entry)
	if err != nil {
		reporter.Report(domain.Problem{
			Severity: domain.SeverityError,
			Message:  "stored graph could not be decoded",
			Cause:    err,
		})
		vtx.Complete(err)
		return nil, false
	}
	if o.policy == domain.FailOnProblems && reporter.HasErrors() {
		// The restored graph is discarded; configuration runs in full.
		vtx.Complete(domain.ErrProblemsReported)
		return nil, false
	}
	vtx.Complete(nil)
	return units, true
}

func (o *Orchestrator) configureAndPersist(ctx context.Context, configure ConfigureFunc, reporter *problems.Reporter) ([]*domain.WorkUnit, *domain.CacheEntry, error) {
	ctx, vtx := o.telemetry.Record(ctx, string(StateConfiguring))

	collector := fingerprint.NewCollector(o.sources)
	units, err := configure(ctx, collector)
	if err != nil {
		vtx.Complete(err)
		return nil, nil, zerr.Wrap(err, "configuration failed")
	}
	if err := ctx.Err(); err != nil {
		vtx.Complete(err)
		return nil, nil, zerr.Wrap(domain.ErrPassAbandoned, "interrupted while configuring")
	}
	vtx.Complete(nil)

	entry := o.persist(ctx, units, collector.Snapshot(), reporter)
	return units, entry, nil
}

// persist writes and publishes a fresh entry. Failures here are logged as
// problems but never block the current build; they only cost future hits.
func (o *Orchestrator) persist(ctx context.Context, units []*domain.WorkUnit, fp domain.Fingerprint, reporter *problems.Reporter) *domain.CacheEntry {
	ctx, vtx := o.telemetry.Record(ctx, string(StatePersisting))
	defer func() { vtx.Complete(nil) }()

	writer := graph.NewWriter(o.registry, reporter)
	entry, err := writer.Write(ctx, units, fp)
	if err != nil {
		reporter.Report(domain.Problem{
			Severity: domain.SeverityError,
			Message:  "graph could not be encoded",
			Cause:    err,
		})
		return nil
	}
	entry.Problems = reporter.Summary()

	if reporter.HasErrors() {
		// An entry is only committed when its problem set holds no errors.
		vtx.Log("not publishing: errors were reported")
		return entry
	}
	if err := o.store.Publish(entry); err != nil {
		// A failed publish only costs future hits, so it never escalates
		// past a warning regardless of policy.
		o.logger.Error(err)
		reporter.Report(domain.Problem{
			Severity: domain.SeverityWarn,
			Message:  "cache entry could not be published",
			Cause:    err,
		})
	}
	return entry
}
