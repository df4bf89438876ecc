package fingerprint

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/core/ports"
)

// fileHashCacheSize bounds the memoized file content hashes. Configuration
// tends to re-read the same manifest files many times.
const fileHashCacheSize = 512

type observationKey struct {
	kind domain.SourceKind
	key  string
}

// Collector records every externally-influenced value observed during
// configuration. It is append-mostly: the first observation per key wins and
// later observations of the same key are dropped, so races between parallel
// observers only need at-least-once recording.
type Collector struct {
	sources *Sources

	mu      sync.Mutex
	seen    map[observationKey]struct{}
	entries []domain.FingerprintEntry

	fileHashes *lru.Cache[string, uint64]
}

var _ ports.Observer = (*Collector)(nil)

// NewCollector creates a collector observing through the given sources.
func NewCollector(sources *Sources) *Collector {
	cache, err := lru.New[string, uint64](fileHashCacheSize)
	if err != nil {
		panic(err) // only fails on a non-positive size
	}
	return &Collector{
		sources:    sources,
		seen:       make(map[observationKey]struct{}),
		fileHashes: cache,
	}
}

// Snapshot returns the fingerprint observed so far, in insertion order.
func (c *Collector) Snapshot() domain.Fingerprint {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]domain.FingerprintEntry, len(c.entries))
	copy(entries, c.entries)
	return domain.Fingerprint{Entries: entries}
}

func (c *Collector) record(kind domain.SourceKind, key string, hash uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := observationKey{kind: kind, key: key}
	if _, dup := c.seen[k]; dup {
		return
	}
	c.seen[k] = struct{}{}
	c.entries = append(c.entries, domain.FingerprintEntry{Kind: kind, Key: key, Hash: hash})
}

// ObserveEnv reads an environment variable and records its hash.
func (c *Collector) ObserveEnv(key string) string {
	v, ok := c.sources.Env(key)
	c.record(domain.SourceEnv, key, presenceHash(domain.SourceEnv, key, v, ok))
	return v
}

// ObserveProperty reads a host-supplied system property and records its hash.
func (c *Collector) ObserveProperty(key string) string {
	v, ok := c.sources.Property(key)
	c.record(domain.SourceProperty, key, presenceHash(domain.SourceProperty, key, v, ok))
	return v
}

// ObserveFile reads a file and records a hash of its content, or of its
// absence. The read result is returned untouched either way.
func (c *Collector) ObserveFile(path string) ([]byte, error) {
	data, err := c.sources.ReadFile(path)
	c.record(domain.SourceFile, path, c.fileHash(path, data, err))
	return data, err
}

// ObserveDir lists a directory and records a hash of the listing.
func (c *Collector) ObserveDir(path string) ([]string, error) {
	names, err := c.sources.ListDir(path)
	if err != nil {
		c.record(domain.SourceDir, path, hashValue(domain.SourceDir, path, absentMarker))
		return nil, err
	}
	c.record(domain.SourceDir, path, hashList(domain.SourceDir, path, names))
	return names, nil
}

// ObserveCLI records a user-supplied command line value and returns it.
func (c *Collector) ObserveCLI(key, value string) string {
	c.record(domain.SourceCLI, key, hashValue(domain.SourceCLI, key, value))
	return value
}

// ObserveClasspath records the derived identity of a dynamically loaded code
// unit: the hash of its ordered file list.
func (c *Collector) ObserveClasspath(cp *domain.Classpath) {
	c.record(domain.SourceClasspath, cp.ID, hashList(domain.SourceClasspath, cp.ID, cp.Files()))
}

func (c *Collector) fileHash(path string, data []byte, err error) uint64 {
	if err != nil {
		return hashValue(domain.SourceFile, path, absentMarker)
	}
	if h, ok := c.fileHashes.Get(path); ok {
		return h
	}
	h := hashBytes(domain.SourceFile, path, data)
	c.fileHashes.Add(path, h)
	return h
}

func presenceHash(kind domain.SourceKind, key, value string, present bool) uint64 {
	if !present {
		return hashValue(kind, key, absentMarker)
	}
	return hashValue(kind, key, value)
}
