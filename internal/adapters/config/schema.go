package config

// settingsFile is the structure of the recall.yaml configuration file.
type settingsFile struct {
	Version string             `yaml:"version"`
	Cache   cacheDTO           `yaml:"cache"`
	Units   map[string]unitDTO `yaml:"units"`
}

type cacheDTO struct {
	Dir         string `yaml:"dir"`
	Policy      string `yaml:"policy"`
	Parallelism int    `yaml:"parallelism"`
}

// unitDTO declares one work unit of the build model. instrumented maps an
// original artifact file name to the transformed file substituted for it.
type unitDTO struct {
	DependsOn    []string          `yaml:"dependsOn"`
	Properties   map[string]any    `yaml:"properties"`
	Env          []string          `yaml:"env"`
	Props        []string          `yaml:"props"`
	Files        []string          `yaml:"files"`
	Dirs         []string          `yaml:"dirs"`
	Classpath    []string          `yaml:"classpath"`
	Instrumented map[string]string `yaml:"instrumented"`
}
