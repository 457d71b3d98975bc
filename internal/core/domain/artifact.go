package domain

import "time"

// ArtifactType classifies one produced build output.
type ArtifactType string

const (
	// ArtifactBundle is a compiled frontend bundle directory.
	ArtifactBundle ArtifactType = "bundle"
	// ArtifactBundleReport is a bundle size analysis document.
	ArtifactBundleReport ArtifactType = "bundle-report"
	// ArtifactPackage is a packaged backend source tree.
	ArtifactPackage ArtifactType = "package"
	// ArtifactSchema is a machine-readable interface schema document.
	ArtifactSchema ArtifactType = "schema"
	// ArtifactModelConfig is a per-model configuration document.
	ArtifactModelConfig ArtifactType = "model-config"
	// ArtifactModelExport is an exported or optimized model binary.
	ArtifactModelExport ArtifactType = "model-export"
	// ArtifactImageRef references one assembled container image.
	ArtifactImageRef ArtifactType = "image-ref"
	// ArtifactCompose is a multi-service composition descriptor.
	ArtifactCompose ArtifactType = "compose"
	// ArtifactManifest is the aggregated build manifest.
	ArtifactManifest ArtifactType = "manifest"
	// ArtifactDeployScript is the generated deployment launcher.
	ArtifactDeployScript ArtifactType = "deploy-script"
)

// BuildArtifact describes one produced output. Immutable; cached payloads are
// restored byte-for-byte from the cache store.
type BuildArtifact struct {
	Type      ArtifactType      `json:"type"`
	Path      string            `json:"path"`
	SizeBytes int64             `json:"size_bytes"`
	Metadata  map[string]string `json:"metadata,omitzero"`
}

// TaskResult is the output of one task executor invocation: created fresh on
// a cache miss, or reconstructed from the cache store on a hit.
type TaskResult struct {
	TaskName  string            `json:"task_name"`
	Duration  time.Duration     `json:"duration"`
	Artifacts []BuildArtifact   `json:"artifacts"`
	Metadata  map[string]string `json:"metadata,omitzero"`
}

// BuildMetrics aggregates per-invocation counters.
type BuildMetrics struct {
	CacheHits     int                      `json:"cache_hits"`
	CacheMisses   int                      `json:"cache_misses"`
	TasksExecuted int                      `json:"tasks_executed"`
	TaskDurations map[string]time.Duration `json:"task_durations,omitzero"`
}

// BuildResult is the aggregated outcome of one build invocation. The top-level
// API always returns one of these, never an unhandled fault.
type BuildResult struct {
	BuildID   string          `json:"build_id"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitzero"`
	Duration  time.Duration   `json:"duration"`
	Artifacts []BuildArtifact `json:"artifacts"`
	Metrics   BuildMetrics    `json:"metrics"`
	// Warnings carries post-build phase failures that did not invalidate the
	// primary artifacts.
	Warnings []string `json:"warnings,omitzero"`
}
