package fingerprint_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/engine/fingerprint"
)

// fakeSources is an in-memory world the collector and checker observe.
type fakeSources struct {
	env        map[string]string
	properties map[string]string
	files      map[string][]byte
	dirs       map[string][]string
	cli        map[string]string
	classpaths map[string][]string
}

func (f *fakeSources) sources() *fingerprint.Sources {
	return &fingerprint.Sources{
		Env: func(key string) (string, bool) {
			v, ok := f.env[key]
			return v, ok
		},
		Property: func(key string) (string, bool) {
			v, ok := f.properties[key]
			return v, ok
		},
		ReadFile: func(path string) ([]byte, error) {
			data, ok := f.files[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return data, nil
		},
		ListDir: func(path string) ([]string, error) {
			names, ok := f.dirs[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return names, nil
		},
		CLIValues: f.cli,
		ClasspathFiles: func(id string) ([]string, bool) {
			files, ok := f.classpaths[id]
			return files, ok
		},
	}
}

func newWorld() *fakeSources {
	return &fakeSources{
		env:        map[string]string{"HOME": "/home/u", "CI": "true"},
		properties: map[string]string{"build.number": "17"},
		files:      map[string][]byte{"input.txt": []byte("content")},
		dirs:       map[string][]string{"src": {"a.go", "b.go"}},
		cli:        map[string]string{"units": "all"},
		classpaths: map[string][]string{"plugins": {"lib/a.jar", "lib/b.jar"}},
	}
}

func collect(world *fakeSources) domain.Fingerprint {
	c := fingerprint.NewCollector(world.sources())
	c.ObserveEnv("HOME")
	c.ObserveProperty("build.number")
	_, _ = c.ObserveFile("input.txt")
	_, _ = c.ObserveDir("src")
	c.ObserveCLI("units", "all")
	c.ObserveClasspath(&domain.Classpath{
		ID: "plugins",
		Artifacts: []domain.ClasspathArtifact{
			{File: "lib/a.jar"},
			{File: "lib/b.jar"},
		},
	})
	return c.Snapshot()
}

func entryFor(fp domain.Fingerprint) *domain.CacheEntry {
	return &domain.CacheEntry{FormatVersion: domain.FormatVersion, Fingerprint: fp}
}

func TestCollector_ReturnsLiveValues(t *testing.T) {
	world := newWorld()
	c := fingerprint.NewCollector(world.sources())

	require.Equal(t, "/home/u", c.ObserveEnv("HOME"))
	require.Equal(t, "", c.ObserveEnv("MISSING"))
	require.Equal(t, "17", c.ObserveProperty("build.number"))

	data, err := c.ObserveFile("input.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("content"), data)

	_, err = c.ObserveFile("missing.txt")
	require.ErrorIs(t, err, os.ErrNotExist)

	names, err := c.ObserveDir("src")
	require.NoError(t, err)
	require.Equal(t, []string{"a.go", "b.go"}, names)

	require.Equal(t, "all", c.ObserveCLI("units", "all"))
}

func TestCollector_FirstObservationWins(t *testing.T) {
	world := newWorld()
	c := fingerprint.NewCollector(world.sources())

	c.ObserveEnv("HOME")
	world.env["HOME"] = "/somewhere/else"
	c.ObserveEnv("HOME")
	c.ObserveEnv("CI")

	entries := c.Snapshot().Entries
	require.Len(t, entries, 2)
	require.Equal(t, "HOME", entries[0].Key)
	require.Equal(t, "CI", entries[1].Key)
}

func TestCollector_AbsenceIsObserved(t *testing.T) {
	world := newWorld()
	c := fingerprint.NewCollector(world.sources())
	c.ObserveEnv("MISSING")

	fp := c.Snapshot()
	require.Len(t, fp.Entries, 1)

	// The variable appearing later is a mismatch, not a blind spot.
	world.env["MISSING"] = "now present"
	checker := fingerprint.NewChecker(world.sources(), 1)
	verdict := checker.Check(context.Background(), entryFor(fp))
	require.False(t, verdict.Hit)
	require.Equal(t, "env 'MISSING' has changed", verdict.Reason)
}

func TestChecker_HitWhenNothingChanged(t *testing.T) {
	world := newWorld()
	fp := collect(world)

	checker := fingerprint.NewChecker(world.sources(), 4)
	verdict := checker.Check(context.Background(), entryFor(fp))
	require.True(t, verdict.Hit)
	require.Empty(t, verdict.Reason)
}

func TestChecker_NoEntry(t *testing.T) {
	checker := fingerprint.NewChecker(newWorld().sources(), 1)
	verdict := checker.Check(context.Background(), nil)
	require.False(t, verdict.Hit)
	require.Equal(t, "no entry", verdict.Reason)
}

func TestChecker_FormatVersionGate(t *testing.T) {
	world := newWorld()
	entry := entryFor(collect(world))
	entry.FormatVersion = domain.FormatVersion - 1

	checker := fingerprint.NewChecker(world.sources(), 1)
	verdict := checker.Check(context.Background(), entry)
	require.False(t, verdict.Hit)
	require.Contains(t, verdict.Reason, "format version changed")
}

func TestChecker_FirstDifferingKeyInStoredOrder(t *testing.T) {
	world := newWorld()
	fp := collect(world)

	// Change two inputs; the reported reason is the earliest in stored order.
	world.files["input.txt"] = []byte("changed")
	world.cli["units"] = "some"

	checker := fingerprint.NewChecker(world.sources(), 8)
	verdict := checker.Check(context.Background(), entryFor(fp))
	require.False(t, verdict.Hit)
	require.Equal(t, "file 'input.txt' has changed", verdict.Reason)
}

func TestChecker_ClasspathChange(t *testing.T) {
	world := newWorld()
	fp := collect(world)

	world.classpaths["plugins"] = []string{"lib/b.jar", "lib/a.jar"}

	checker := fingerprint.NewChecker(world.sources(), 1)
	verdict := checker.Check(context.Background(), entryFor(fp))
	require.False(t, verdict.Hit)
	require.Equal(t, "classpath 'plugins' has changed", verdict.Reason)
}

func TestChecker_DirListingChange(t *testing.T) {
	world := newWorld()
	fp := collect(world)

	world.dirs["src"] = []string{"a.go", "b.go", "c.go"}

	checker := fingerprint.NewChecker(world.sources(), 1)
	verdict := checker.Check(context.Background(), entryFor(fp))
	require.False(t, verdict.Hit)
	require.Equal(t, "dir 'src' has changed", verdict.Reason)
}
