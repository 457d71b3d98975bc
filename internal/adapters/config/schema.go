package config

// Forgefile represents the structure of the forge.yaml configuration file.
type Forgefile struct {
	Name      string       `yaml:"name"`
	Version   string       `yaml:"version"`
	Frontend  FrontendDTO  `yaml:"frontend"`
	Backend   BackendDTO   `yaml:"backend"`
	AIModels  AIModelsDTO  `yaml:"aiModels"`
	Container ContainerDTO `yaml:"container"`
	Plugins   []PluginDTO  `yaml:"plugins"`
}

// FrontendDTO declares the frontend bundler inputs.
type FrontendDTO struct {
	SourceDir string   `yaml:"sourceDir"`
	Manifest  string   `yaml:"manifest"`
	Command   []string `yaml:"command"`
}

// BackendDTO declares the backend packager inputs.
type BackendDTO struct {
	SourceDir      string   `yaml:"sourceDir"`
	Manifest       string   `yaml:"manifest"`
	SchemaCommand  []string `yaml:"schemaCommand"`
	TypegenCommand []string `yaml:"typegenCommand"`
}

// AIModelsDTO declares the model optimizer inputs.
type AIModelsDTO struct {
	Models        []ModelDTO `yaml:"models"`
	ExportCommand []string   `yaml:"exportCommand"`
}

// ModelDTO declares one AI model.
type ModelDTO struct {
	Name         string `yaml:"name"`
	Provider     string `yaml:"provider"`
	Quantization string `yaml:"quantization"`
	ContextSize  int    `yaml:"contextSize"`
	Export       bool   `yaml:"export"`
}

// ContainerDTO declares the image builder inputs.
type ContainerDTO struct {
	BuildCommand []string   `yaml:"buildCommand"`
	Images       []ImageDTO `yaml:"images"`
}

// ImageDTO declares one container image template.
type ImageDTO struct {
	Name       string            `yaml:"name"`
	Dockerfile string            `yaml:"dockerfile"`
	Context    string            `yaml:"context"`
	Tag        string            `yaml:"tag"`
	BuildArgs  map[string]string `yaml:"buildArgs"`
}

// PluginDTO is a named pre-build hook.
type PluginDTO struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
}
