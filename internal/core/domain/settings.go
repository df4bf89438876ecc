package domain

// Settings is the loaded build configuration: where the cache lives, how
// problems are treated, and the declared build model.
type Settings struct {
	CacheDir    string
	Policy      ProblemPolicy
	Parallelism int
	// Units are the declared work units in declaration order.
	Units []UnitSpec
}

// UnitSpec declares one work unit of the build model. The spec is pure data;
// configuring it into a WorkUnit is what observes external inputs.
type UnitSpec struct {
	Name       string
	DependsOn  []string
	Properties map[string]any
	// Env names environment variables the unit's configuration reads.
	Env []string
	// Props names host-supplied system properties the configuration reads.
	Props []string
	// Files names files whose content the unit's configuration reads.
	Files []string
	// Dirs names directories whose listing the unit's configuration reads.
	Dirs []string
	// Classpath is the ordered artifact file list of dynamically loaded
	// configuration code, when the unit carries any.
	Classpath []string
	// Instrumented maps an original artifact file name to the transformed
	// artifact that substitutes for it on the effective classpath.
	Instrumented map[string]string
}
