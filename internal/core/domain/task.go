package domain

// ExecutorKind is a closed enumeration of task executor implementations.
// Dispatch happens over this tag rather than free-form strings so that an
// unknown kind is a construction-time error, not a runtime lookup miss.
type ExecutorKind int

const (
	// KindFrontend bundles and chunks the UI assets.
	KindFrontend ExecutorKind = iota
	// KindBackend packages the backend service for deployment.
	KindBackend
	// KindAIModels prepares AI model configuration and binaries.
	KindAIModels
	// KindContainer assembles deployable container images.
	KindContainer
)

// String returns the stable wire name of the executor kind. It is part of
// the cache key and must never change for an existing kind.
func (k ExecutorKind) String() string {
	switch k {
	case KindFrontend:
		return "frontend"
	case KindBackend:
		return "backend"
	case KindAIModels:
		return "ai-models"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// ModelSpec declares one AI model to prepare.
type ModelSpec struct {
	Name         string `json:"name" yaml:"name"`
	Provider     string `json:"provider" yaml:"provider"`
	Quantization string `json:"quantization,omitzero" yaml:"quantization,omitempty"`
	ContextSize  int    `json:"context_size,omitzero" yaml:"contextSize,omitempty"`
	Export       bool   `json:"export,omitzero" yaml:"export,omitempty"`
}

// ImageTemplate declares one container image to assemble.
type ImageTemplate struct {
	Name       string            `json:"name" yaml:"name"`
	Dockerfile string            `json:"dockerfile" yaml:"dockerfile"`
	Context    string            `json:"context" yaml:"context"`
	Tag        string            `json:"tag" yaml:"tag"`
	BuildArgs  map[string]string `json:"build_args,omitzero" yaml:"buildArgs,omitempty"`
}

// TaskConfig carries everything an executor's output may depend on. Executors
// must not read ambient state outside of it; any value that influences the
// produced artifacts has to be threaded through here so the cache key covers it.
//
// Serialization via encoding/json is the canonical form used for cache key
// derivation: struct fields serialize in declaration order and map keys are
// sorted, so equal configs always produce equal bytes.
type TaskConfig struct {
	Environment string            `json:"environment"`
	SourceDir   string            `json:"source_dir,omitzero"`
	Manifest    string            `json:"manifest,omitzero"`
	OutputDir   string            `json:"output_dir"`
	Command     []string          `json:"command,omitzero"`
	Models      []ModelSpec       `json:"models,omitzero"`
	Images      []ImageTemplate   `json:"images,omitzero"`
	Settings    map[string]string `json:"settings,omitzero"`
}

// BuildTask is one unit of work in a build plan. It is created once per
// invocation by the planner and never mutated afterwards.
type BuildTask struct {
	Name         string
	Kind         ExecutorKind
	Dependencies []string
	Parallel     bool
	// Inputs are the files and directories the task's output depends on,
	// including upstream artifact paths. They feed the cache key.
	Inputs []string
	Config TaskConfig
}
