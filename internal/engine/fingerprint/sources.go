// Package fingerprint records the external inputs observed while configuring
// the build model and decides whether a stored cache entry is still valid.
package fingerprint

import (
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/recall/internal/core/domain"
)

// Sources bundles the external inputs a pass can observe. Both the collector
// and the checker read through the same sources, so a re-observation sees
// exactly what configuration saw.
type Sources struct {
	// Env looks up an environment variable.
	Env func(key string) (string, bool)
	// Property looks up a host-supplied system property.
	Property func(key string) (string, bool)
	// ReadFile reads a file's content.
	ReadFile func(path string) ([]byte, error)
	// ListDir lists a directory's entry names.
	ListDir func(path string) ([]string, error)
	// CLIValues are the user-supplied command line values of this invocation.
	CLIValues map[string]string
	// ClasspathFiles resolves a classpath id to its ordered file list.
	ClasspathFiles func(id string) ([]string, bool)
}

// OSSources returns sources reading from the live process environment and
// filesystem, with properties and CLI values supplied by the host.
func OSSources(properties, cliValues map[string]string) *Sources {
	return &Sources{
		Env: os.LookupEnv,
		Property: func(key string) (string, bool) {
			v, ok := properties[key]
			return v, ok
		},
		ReadFile: os.ReadFile,
		ListDir: func(path string) ([]string, error) {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, err
			}
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name()
			}
			sort.Strings(names)
			return names, nil
		},
		CLIValues: cliValues,
	}
}

// Value hashing. Absence hashes differently from every present value, so a
// variable appearing or disappearing is a mismatch, not a blind spot.

const absentMarker = "\x00absent\x00"

func hashValue(kind domain.SourceKind, key, value string) uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte{byte(kind)})
	_, _ = h.WriteString(key)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(value)
	return h.Sum64()
}

func hashBytes(kind domain.SourceKind, key string, value []byte) uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte{byte(kind)})
	_, _ = h.WriteString(key)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(value)
	return h.Sum64()
}

func hashList(kind domain.SourceKind, key string, values []string) uint64 {
	return hashValue(kind, key, strings.Join(values, "\x00"))
}
