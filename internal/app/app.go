// Package app implements the application layer for recall.
package app

import (
	"context"
	"sort"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/core/ports"
	"go.trai.ch/recall/internal/engine/fingerprint"
	"go.trai.ch/recall/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// StoreFactory opens the entry store rooted at the given cache directory.
type StoreFactory func(dir string) ports.EntryStore

// App represents the main application logic.
type App struct {
	loader    ports.ConfigLoader
	telemetry ports.Telemetry
	logger    ports.Logger
	stores    StoreFactory
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, telemetry ports.Telemetry, logger ports.Logger, stores StoreFactory) *App {
	return &App{
		loader:    loader,
		telemetry: telemetry,
		logger:    logger,
		stores:    stores,
	}
}

// RunOptions carry the per-invocation overrides from the command line.
type RunOptions struct {
	// Dir is the directory holding the settings file.
	Dir string
	// CacheDir overrides the configured cache directory when non-empty.
	CacheDir string
	// FailOnProblems escalates the problem policy for this invocation.
	FailOnProblems bool
	// Properties are host-supplied system properties.
	Properties map[string]string
	// CLIValues are the raw command line values that feed the fingerprint.
	CLIValues map[string]string
}

// Run executes one cache pass and returns its report and the ready model.
func (a *App) Run(ctx context.Context, opts RunOptions) (*orchestrator.PassReport, []*domain.WorkUnit, error) {
	settings, orch, err := a.build(opts)
	if err != nil {
		return nil, nil, err
	}
	return orch.Execute(ctx, func(ctx context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		// Command line values are build inputs like any other; observe them
		// in stable order before the model reads anything.
		keys := make([]string, 0, len(opts.CLIValues))
		for k := range opts.CLIValues {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obs.ObserveCLI(k, opts.CLIValues[k])
		}
		return a.loader.BuildModel(ctx, settings, obs)
	})
}

// Check runs only the invalidation phase and reports whether the stored
// entry would be reused.
func (a *App) Check(ctx context.Context, opts RunOptions) (domain.Verdict, error) {
	_, orch, err := a.build(opts)
	if err != nil {
		return domain.Verdict{}, err
	}
	return orch.Check(ctx), nil
}

// Clean discards the stored cache entry.
func (a *App) Clean(_ context.Context, opts RunOptions) error {
	settings, err := a.settings(opts)
	if err != nil {
		return err
	}
	if err := a.stores(settings.CacheDir).Discard(); err != nil {
		return zerr.Wrap(err, "failed to discard cache entry")
	}
	a.logger.Info("cache entry discarded")
	return nil
}

func (a *App) settings(opts RunOptions) (*domain.Settings, error) {
	settings, err := a.loader.Load(opts.Dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if opts.CacheDir != "" {
		settings.CacheDir = opts.CacheDir
	}
	if opts.FailOnProblems {
		settings.Policy = domain.FailOnProblems
	}
	return settings, nil
}

func (a *App) build(opts RunOptions) (*domain.Settings, *orchestrator.Orchestrator, error) {
	settings, err := a.settings(opts)
	if err != nil {
		return nil, nil, err
	}
	sources := fingerprint.OSSources(opts.Properties, opts.CLIValues)
	sources.ClasspathFiles = func(id string) ([]string, bool) {
		return a.loader.Classpath(settings, id)
	}
	orch := orchestrator.New(orchestrator.Options{
		Store:       a.stores(settings.CacheDir),
		Sources:     sources,
		Policy:      settings.Policy,
		Telemetry:   a.telemetry,
		Logger:      a.logger,
		Parallelism: settings.Parallelism,
	})
	return settings, orch, nil
}
