// Package config loads the recall settings file and runs the configuration
// phase that turns declared unit specs into a work-unit graph.
package config

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/recall/internal/adapters/classpath"
	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the settings file looked up in the working directory.
const DefaultFilename = "recall.yaml"

const defaultCacheDir = ".recall"

var _ ports.ConfigLoader = (*FileLoader)(nil)

// FileLoader implements ports.ConfigLoader on a YAML file.
type FileLoader struct {
	Filename string
}

// NewLoader creates a loader reading the default settings filename.
func NewLoader() *FileLoader {
	return &FileLoader{Filename: DefaultFilename}
}

// Load reads the settings from the given working directory.
func (l *FileLoader) Load(cwd string) (*domain.Settings, error) {
	path := filepath.Join(cwd, l.Filename)
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read settings file")
	}

	var file settingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse settings file")
	}
	return toSettings(&file)
}

func toSettings(file *settingsFile) (*domain.Settings, error) {
	s := &domain.Settings{
		CacheDir:    file.Cache.Dir,
		Parallelism: file.Cache.Parallelism,
	}
	if s.CacheDir == "" {
		s.CacheDir = defaultCacheDir
	}
	switch file.Cache.Policy {
	case "", "warn":
		s.Policy = domain.WarnOnProblems
	case "fail":
		s.Policy = domain.FailOnProblems
	default:
		return nil, zerr.With(zerr.New("unknown problem policy"), "policy", file.Cache.Policy)
	}

	// Map iteration is random; sort unit names so the declared model, and
	// with it the payload, is stable across runs.
	names := make([]string, 0, len(file.Units))
	for name := range file.Units {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dto := file.Units[name]
		s.Units = append(s.Units, domain.UnitSpec{
			Name:         name,
			DependsOn:    dto.DependsOn,
			Properties:   normalizeValue(dto.Properties).(map[string]any),
			Env:          dto.Env,
			Props:        dto.Props,
			Files:        dto.Files,
			Dirs:         dto.Dirs,
			Classpath:    dto.Classpath,
			Instrumented: dto.Instrumented,
		})
	}
	return s, nil
}

// BuildModel runs the configuration phase: specs become work units, external
// reads are routed through the observer, and dependency references resolve to
// shared *WorkUnit instances so identity survives a cache round trip.
func (l *FileLoader) BuildModel(ctx context.Context, settings *domain.Settings, obs ports.Observer) ([]*domain.WorkUnit, error) {
	units := make(map[string]*domain.WorkUnit, len(settings.Units))
	roots := make([]*domain.WorkUnit, 0, len(settings.Units))
	for _, spec := range settings.Units {
		u := &domain.WorkUnit{
			Name:       domain.NewInternedString(spec.Name),
			Properties: make(map[string]any, len(spec.Properties)),
		}
		units[spec.Name] = u
		roots = append(roots, u)
	}

	for _, spec := range settings.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := units[spec.Name]
		for k, v := range spec.Properties {
			u.Properties[k] = v
		}
		for _, key := range spec.Env {
			u.Properties["env."+key] = obs.ObserveEnv(key)
		}
		for _, key := range spec.Props {
			u.Properties["prop."+key] = obs.ObserveProperty(key)
		}
		for _, path := range spec.Files {
			data, err := obs.ObserveFile(path)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to read declared input file"), "path", path)
			}
			u.Properties["file."+path] = string(data)
		}
		for _, path := range spec.Dirs {
			names, err := obs.ObserveDir(path)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to list declared input directory"), "path", path)
			}
			u.Properties["dir."+path] = strings.Join(names, "\n")
		}
		if len(spec.Classpath) > 0 {
			cp := classpath.ForSpec(spec)
			obs.ObserveClasspath(cp)
			u.Properties["classpath"] = cp
		}
		for _, dep := range spec.DependsOn {
			target, ok := units[dep]
			if !ok {
				err := zerr.Wrap(domain.ErrUnknownWorkUnit, "failed to resolve unit dependency")
				return nil, zerr.With(zerr.With(err, "unit", spec.Name), "dependency", dep)
			}
			u.DependsOn = append(u.DependsOn, target)
		}
	}
	return roots, nil
}

// Classpath resolves a unit's effective classpath file list for invalidation
// checking, through the same derivation configuration uses.
func (l *FileLoader) Classpath(settings *domain.Settings, id string) ([]string, bool) {
	for _, spec := range settings.Units {
		if spec.Name == id && len(spec.Classpath) > 0 {
			return classpath.ForSpec(spec).Files(), true
		}
	}
	return nil, false
}

// normalizeValue maps yaml's decoded shapes onto the codec layer's normalized
// forms (int64, float64, string, bool, []any, map[string]any), so a configured
// model and its restored counterpart compare equal.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalizeValue(e)
		}
		return out
	case nil:
		return nil
	default:
		return val
	}
}
