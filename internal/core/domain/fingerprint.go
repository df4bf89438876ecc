package domain

// SourceKind identifies the kind of external input a fingerprint entry was
// observed from.
type SourceKind uint8

const (
	// SourceEnv is an environment variable read.
	SourceEnv SourceKind = iota
	// SourceProperty is a host-supplied system property read.
	SourceProperty
	// SourceFile is a file content or existence read.
	SourceFile
	// SourceDir is a directory listing.
	SourceDir
	// SourceCLI is a user-supplied command line value.
	SourceCLI
	// SourceClasspath is the derived identity of a dynamically loaded code unit.
	SourceClasspath
)

// String returns the kind name used in miss reasons and diagnostics.
func (k SourceKind) String() string {
	switch k {
	case SourceEnv:
		return "env"
	case SourceProperty:
		return "property"
	case SourceFile:
		return "file"
	case SourceDir:
		return "dir"
	case SourceCLI:
		return "cli"
	case SourceClasspath:
		return "classpath"
	default:
		return "unknown"
	}
}

// FingerprintEntry is one observed external read: the source kind, the key it
// was read under, and the hash of the value that was observed.
type FingerprintEntry struct {
	Kind SourceKind
	Key  string
	Hash uint64
}

// Fingerprint is the ordered record of every distinct external input observed
// while configuring the build model. Order is insertion order; the first
// observation of a key wins.
type Fingerprint struct {
	Entries []FingerprintEntry
}

// Verdict is the invalidation checker's answer: either a hit, or a miss
// naming the first entry that no longer reproduces its stored hash.
type Verdict struct {
	Hit    bool
	Reason string
}
