package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/core/ports"
	"go.trai.ch/recall/internal/core/ports/mocks"
	"go.trai.ch/recall/internal/engine/fingerprint"
	"go.trai.ch/recall/internal/engine/orchestrator"
)

func testSources(env map[string]string) *fingerprint.Sources {
	return &fingerprint.Sources{
		Env: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		Property: func(string) (string, bool) { return "", false },
		ReadFile: func(string) ([]byte, error) { return nil, errors.New("no files") },
		ListDir:  func(string) ([]string, error) { return nil, errors.New("no dirs") },
	}
}

func configureModel(obs ports.Observer) []*domain.WorkUnit {
	dep := &domain.WorkUnit{Name: domain.NewInternedString("dep")}
	root := &domain.WorkUnit{
		Name:       domain.NewInternedString("root"),
		Properties: map[string]any{"env.LANG": obs.ObserveEnv("LANG")},
		DependsOn:  []*domain.WorkUnit{dep},
	}
	return []*domain.WorkUnit{root, dep}
}

func TestExecute_MissConfiguresAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, nil)

	var published *domain.CacheEntry
	store.EXPECT().Publish(gomock.Any()).DoAndReturn(func(entry *domain.CacheEntry) error {
		published = entry
		return nil
	})

	o := orchestrator.New(orchestrator.Options{
		Store:   store,
		Sources: testSources(map[string]string{"LANG": "C"}),
	})

	report, units, err := o.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		return configureModel(obs), nil
	})
	require.NoError(t, err)
	require.Equal(t, orchestrator.SourceConfigured, report.Source)
	require.Equal(t, "no entry", report.MissReason)
	require.Len(t, units, 2)
	require.Equal(t, "C", units[0].Properties["env.LANG"])

	require.NotNil(t, published)
	require.Equal(t, domain.FormatVersion, published.FormatVersion)
	require.Equal(t, published.EntryID, report.EntryID)
	require.Len(t, published.Fingerprint.Entries, 1)
	require.Equal(t, domain.SourceEnv, published.Fingerprint.Entries[0].Kind)
}

func TestExecute_HitRestoresWithoutConfiguring(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	env := map[string]string{"LANG": "C"}

	// First pass captures the entry.
	seed := mocks.NewMockEntryStore(ctrl)
	seed.EXPECT().Load().Return(nil, nil)
	var entry *domain.CacheEntry
	seed.EXPECT().Publish(gomock.Any()).DoAndReturn(func(e *domain.CacheEntry) error {
		entry = e
		return nil
	})
	first := orchestrator.New(orchestrator.Options{Store: seed, Sources: testSources(env)})
	_, _, err := first.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		return configureModel(obs), nil
	})
	require.NoError(t, err)
	require.NotNil(t, entry)

	// Second pass restores it; configuration must not run.
	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(entry, nil)
	second := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(env)})

	report, units, err := second.Execute(context.Background(), func(context.Context, ports.Observer) ([]*domain.WorkUnit, error) {
		t.Fatal("configuration must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, orchestrator.SourceRestored, report.Source)
	require.Equal(t, entry.EntryID, report.EntryID)
	require.Len(t, units, 2)
	require.Equal(t, "C", units[0].Properties["env.LANG"])
	require.Same(t, units[1], units[0].DependsOn[0])
}

func TestExecute_ChangedInputReconfigures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	env := map[string]string{"LANG": "C"}

	seed := mocks.NewMockEntryStore(ctrl)
	seed.EXPECT().Load().Return(nil, nil)
	var entry *domain.CacheEntry
	seed.EXPECT().Publish(gomock.Any()).DoAndReturn(func(e *domain.CacheEntry) error {
		entry = e
		return nil
	})
	first := orchestrator.New(orchestrator.Options{Store: seed, Sources: testSources(env)})
	_, _, err := first.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		return configureModel(obs), nil
	})
	require.NoError(t, err)

	env["LANG"] = "en_US.UTF-8"

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(entry, nil)
	store.EXPECT().Publish(gomock.Any()).Return(nil)
	second := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(env)})

	configured := false
	report, units, err := second.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		configured = true
		return configureModel(obs), nil
	})
	require.NoError(t, err)
	require.True(t, configured)
	require.Equal(t, orchestrator.SourceConfigured, report.Source)
	require.Equal(t, "env 'LANG' has changed", report.MissReason)
	require.Equal(t, "en_US.UTF-8", units[0].Properties["env.LANG"])
}

func TestExecute_CorruptEntryFallsBackToConfiguration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	env := map[string]string{"LANG": "C"}

	seed := mocks.NewMockEntryStore(ctrl)
	seed.EXPECT().Load().Return(nil, nil)
	var entry *domain.CacheEntry
	seed.EXPECT().Publish(gomock.Any()).DoAndReturn(func(e *domain.CacheEntry) error {
		entry = e
		return nil
	})
	first := orchestrator.New(orchestrator.Options{Store: seed, Sources: testSources(env)})
	_, _, err := first.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		return configureModel(obs), nil
	})
	require.NoError(t, err)

	entry.Payload = entry.Payload[:3]

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(entry, nil)
	store.EXPECT().Publish(gomock.Any()).Return(nil)
	second := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(env)})

	report, units, err := second.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		return configureModel(obs), nil
	})
	require.NoError(t, err)
	require.Equal(t, orchestrator.SourceConfigured, report.Source)
	require.Equal(t, "restore failed", report.MissReason)
	require.Len(t, units, 2)

	var sawDecodeProblem bool
	for _, p := range report.Problems {
		if p.Severity == domain.SeverityError && p.Message == "stored graph could not be decoded" {
			sawDecodeProblem = true
		}
	}
	require.True(t, sawDecodeProblem)
}

func TestExecute_UnreadableStoreDegradesToMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, errors.New("disk on fire"))
	store.EXPECT().Publish(gomock.Any()).Return(nil)

	o := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(nil)})
	report, _, err := o.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		return configureModel(obs), nil
	})
	require.NoError(t, err)
	require.Equal(t, "entry unreadable", report.MissReason)
}

func TestExecute_UnsupportedValueNeverPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Publish expectation: committing an entry with error problems would
	// fail the test through the mock controller.
	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, nil)

	o := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(nil)})
	report, units, err := o.Execute(context.Background(), func(context.Context, ports.Observer) ([]*domain.WorkUnit, error) {
		return []*domain.WorkUnit{{
			Name:       domain.NewInternedString("u"),
			Properties: map[string]any{"bad": make(chan int)},
		}}, nil
	})

	// Under warn-on-problems the pass still succeeds with the live model.
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.NotEmpty(t, report.Problems)
}

func TestExecute_FailOnProblemsEscalates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, nil)

	o := orchestrator.New(orchestrator.Options{
		Store:   store,
		Sources: testSources(nil),
		Policy:  domain.FailOnProblems,
	})
	_, _, err := o.Execute(context.Background(), func(context.Context, ports.Observer) ([]*domain.WorkUnit, error) {
		return []*domain.WorkUnit{{
			Name:       domain.NewInternedString("u"),
			Properties: map[string]any{"bad": make(chan int)},
		}}, nil
	})
	require.ErrorIs(t, err, domain.ErrProblemsReported)
}

func TestExecute_PublishFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, nil)
	store.EXPECT().Publish(gomock.Any()).Return(errors.New("disk full"))

	o := orchestrator.New(orchestrator.Options{
		Store:   store,
		Sources: testSources(nil),
		Policy:  domain.FailOnProblems,
	})
	report, _, err := o.Execute(context.Background(), func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		return configureModel(obs), nil
	})
	require.NoError(t, err)

	var sawWarn bool
	for _, p := range report.Problems {
		if p.Severity == domain.SeverityWarn && p.Message == "cache entry could not be published" {
			sawWarn = true
		}
	}
	require.True(t, sawWarn)
}

func TestExecute_ConfigureErrorFailsThePass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, nil)

	o := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(nil)})
	_, _, err := o.Execute(context.Background(), func(context.Context, ports.Observer) ([]*domain.WorkUnit, error) {
		return nil, errors.New("settings broken")
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "configuration failed")
}

func TestExecute_CancellationAbandonsThePass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	o := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(nil)})
	_, _, err := o.Execute(ctx, func(_ context.Context, obs ports.Observer) ([]*domain.WorkUnit, error) {
		cancel()
		return configureModel(obs), nil
	})
	require.ErrorIs(t, err, domain.ErrPassAbandoned)
}

func TestCheck_ReportsVerdictOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockEntryStore(ctrl)
	store.EXPECT().Load().Return(nil, nil)

	o := orchestrator.New(orchestrator.Options{Store: store, Sources: testSources(nil)})
	verdict := o.Check(context.Background())
	require.False(t, verdict.Hit)
	require.Equal(t, "no entry", verdict.Reason)
}
