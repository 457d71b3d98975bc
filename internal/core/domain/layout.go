package domain

import "path/filepath"

const (
	// SchemaFileName is the interface schema document inside the packaged
	// backend tree. The frontend task declares it as an input, so a backend
	// rebuild that changes the schema also invalidates the frontend's cache
	// entry.
	SchemaFileName = "openapi.json"

	// BundleReportFileName is the bundle size analysis document.
	BundleReportFileName = "frontend-stats.json"

	// ComposeFileName is the multi-service composition descriptor.
	ComposeFileName = "docker-compose.yml"

	// ManifestFileName is the aggregated build manifest.
	ManifestFileName = "build-manifest.json"

	// DeployScriptFileName is the generated deployment script.
	DeployScriptFileName = "deploy.sh"
)

// BundleDir returns the frontend bundle directory under outputDir.
func BundleDir(outputDir string) string {
	return filepath.Join(outputDir, "frontend")
}

// PackageDir returns the packaged backend tree under outputDir.
func PackageDir(outputDir string) string {
	return filepath.Join(outputDir, "backend")
}

// SchemaPath returns the backend interface schema document under outputDir.
func SchemaPath(outputDir string) string {
	return filepath.Join(PackageDir(outputDir), SchemaFileName)
}

// ModelsDir returns the AI model artifact directory under outputDir.
func ModelsDir(outputDir string) string {
	return filepath.Join(outputDir, "models")
}

// ContainerDir returns the container artifact directory under outputDir.
func ContainerDir(outputDir string) string {
	return filepath.Join(outputDir, "container")
}
