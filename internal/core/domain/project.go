package domain

// ProjectConfig is the declarative project description loaded from forge.yaml.
// The planner turns it into task configurations; nothing else reads it during
// execution, so every value an executor depends on flows through TaskConfig.
type ProjectConfig struct {
	Name    string
	Version string

	Frontend  FrontendConfig
	Backend   BackendConfig
	AIModels  AIModelsConfig
	Container ContainerConfig

	// Plugins are pre-build hooks executed before any stage runs.
	Plugins []PluginHook
}

// FrontendConfig declares the frontend bundler inputs.
type FrontendConfig struct {
	SourceDir string
	Manifest  string
	// Command is the external bundler invocation. When empty the executor
	// falls back to a plain source-tree copy, which keeps development builds
	// working without the bundler toolchain installed.
	Command []string
}

// BackendConfig declares the backend packager inputs.
type BackendConfig struct {
	SourceDir string
	Manifest  string
	// SchemaCommand, when set, is expected to write the interface schema
	// document into the packaged tree. When empty a minimal schema is
	// generated from the project metadata.
	SchemaCommand []string
	// TypeGenCommand, when set, runs during pre-build to generate interface
	// types consumed by the frontend.
	TypeGenCommand []string
}

// AIModelsConfig declares the model optimizer inputs.
type AIModelsConfig struct {
	Models []ModelSpec
	// ExportCommand, when set, is run once per model with Export enabled.
	ExportCommand []string
}

// ContainerConfig declares the image builder inputs.
type ContainerConfig struct {
	Images []ImageTemplate
	// BuildCommand is the external image build tool invocation prefix, e.g.
	// ["docker", "build"]. When empty no tool is invoked and only image
	// references plus the composition descriptor are emitted.
	BuildCommand []string
}

// PluginHook is a named pre-build command.
type PluginHook struct {
	Name    string
	Command []string
}
