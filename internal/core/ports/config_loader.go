package ports

import (
	"context"

	"go.trai.ch/recall/internal/core/domain"
)

// ConfigLoader loads the build settings and configures the build model.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the settings file from the given working directory.
	Load(cwd string) (*domain.Settings, error)

	// BuildModel runs the configuration phase: it turns the declared unit
	// specs into a work-unit graph, routing every external read through the
	// observer so the read ends up in the pass fingerprint.
	BuildModel(ctx context.Context, settings *domain.Settings, obs Observer) ([]*domain.WorkUnit, error)

	// Classpath resolves a unit's effective classpath file list, for
	// re-observation by the invalidation checker.
	Classpath(settings *domain.Settings, id string) ([]string, bool)
}

// Observer is the fingerprint collector surface configuration-time code calls
// for every external read that could affect the model. Each method returns
// the live value; recording never alters observed semantics.
type Observer interface {
	ObserveEnv(key string) string
	ObserveProperty(key string) string
	ObserveFile(path string) ([]byte, error)
	ObserveDir(path string) ([]string, error)
	ObserveCLI(key, value string) string
	ObserveClasspath(cp *domain.Classpath)
}
