package domain

// ClasspathArtifact is one artifact file of a dynamically loaded code unit,
// together with the identity of the artifact it originated from. A transformed
// artifact keeps the original file name and component id of its origin, so two
// artifacts are the same origin regardless of the transformation applied.
type ClasspathArtifact struct {
	File             string
	OriginalFileName string
	ComponentID      string
}

// Origin is the identity key artifacts are matched on.
func (a ClasspathArtifact) Origin() ArtifactOrigin {
	return ArtifactOrigin{OriginalFileName: a.OriginalFileName, ComponentID: a.ComponentID}
}

// ArtifactOrigin identifies the pre-transform artifact an entry came from.
type ArtifactOrigin struct {
	OriginalFileName string
	ComponentID      string
}

// Classpath is the derived, order-preserving identity of a dynamically loaded
// code unit. It is what gets cached in place of the unserializable loaded
// code itself: the ordered artifact list, ordered by the original classpath.
type Classpath struct {
	ID        string
	Artifacts []ClasspathArtifact
}

// Files returns the artifact file paths in classpath order.
func (c *Classpath) Files() []string {
	files := make([]string, len(c.Artifacts))
	for i, a := range c.Artifacts {
		files[i] = a.File
	}
	return files
}
