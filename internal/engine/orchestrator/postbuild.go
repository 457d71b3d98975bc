package orchestrator

import (
	"compress/gzip"
	"encoding/json"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/farm-framework/forge/internal/core/domain"
)

// manifestDocument is the serialized form of the build manifest written to
// the output directory after a successful build.
type manifestDocument struct {
	BuildID     string             `json:"build_id"`
	Environment string             `json:"environment"`
	GeneratedAt string             `json:"generated_at"`
	Artifacts   []manifestArtifact `json:"artifacts"`
}

type manifestArtifact struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// postBuild finalizes a successful build. Its steps are best-effort: a
// failure here does not invalidate the artifacts already produced, so each
// error is collected as a warning instead of failing the build.
func (o *Orchestrator) postBuild(plan *domain.BuildPlan, state *runState, opts domain.BuildOptions) []string {
	var warnings []string

	if err := o.optimizeArtifacts(state); err != nil {
		warnings = append(warnings, "artifact optimization failed: "+err.Error())
	}
	if err := o.writeManifest(plan, state, opts); err != nil {
		warnings = append(warnings, "manifest generation failed: "+err.Error())
	}
	if err := o.writeDeployScript(plan, state, opts); err != nil {
		warnings = append(warnings, "deploy script generation failed: "+err.Error())
	}

	for _, w := range warnings {
		o.logger.Warn(w)
	}
	return warnings
}

// compressibleExtensions are bundle asset types worth precompressing. Binary
// formats (images, fonts, model weights) are already packed and are skipped.
var compressibleExtensions = map[string]bool{
	".js":   true,
	".mjs":  true,
	".css":  true,
	".html": true,
	".json": true,
	".svg":  true,
	".map":  true,
	".txt":  true,
}

// gzipMinSize is the smallest file worth a precompressed sibling; below this
// the gzip header overhead eats the savings.
const gzipMinSize = 1 << 10

// optimizeArtifacts writes precompressed .gz siblings next to compressible
// bundle assets so a static server can serve them without compressing on the
// fly. Runs after every stage completed, so it never feeds back into cache
// keys or stored payloads.
func (o *Orchestrator) optimizeArtifacts(state *runState) error {
	for _, artifact := range state.artifactList() {
		if artifact.Type != domain.ArtifactBundle {
			continue
		}
		if err := precompressTree(artifact.Path); err != nil {
			return err
		}
	}
	return nil
}

func precompressTree(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return err
	}

	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !compressibleExtensions[filepath.Ext(path)] {
			return nil
		}
		fi, statErr := d.Info()
		if statErr != nil || fi.Size() < gzipMinSize {
			return statErr
		}
		return precompressFile(path)
	})
}

func precompressFile(path string) error {
	in, err := os.Open(path) //nolint:gosec // path comes from the bundle walk
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only file

	out, err := os.Create(path + ".gz") //nolint:gosec // sibling of a walked bundle file
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		_ = gz.Close()
		_ = out.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// writeManifest records what the build produced. Artifacts are sorted by
// path so the manifest is stable across runs regardless of stage
// parallelism.
func (o *Orchestrator) writeManifest(plan *domain.BuildPlan, state *runState, opts domain.BuildOptions) error {
	artifacts := state.artifactList()
	entries := make([]manifestArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		entries = append(entries, manifestArtifact{
			Type:      string(a.Type),
			Path:      a.Path,
			SizeBytes: a.SizeBytes,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	doc := manifestDocument{
		BuildID:     plan.BuildID,
		Environment: string(opts.Environment),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Artifacts:   entries,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(opts.OutputDir, domain.ManifestFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	state.appendArtifact(domain.BuildArtifact{
		Type:      domain.ArtifactManifest,
		Path:      path,
		SizeBytes: int64(len(data)),
		Metadata:  map[string]string{"build_id": plan.BuildID},
	})
	return nil
}

// writeDeployScript emits a small launcher next to the artifacts. When the
// build produced a compose descriptor the script brings the stack up,
// otherwise it only points at the manifest.
func (o *Orchestrator) writeDeployScript(plan *domain.BuildPlan, state *runState, opts domain.BuildOptions) error {
	script := "#!/bin/sh\nset -eu\ncd \"$(dirname \"$0\")\"\n"
	if planIncludes(plan, domain.KindContainer) {
		script += "docker compose -f " + filepath.Join("container", domain.ComposeFileName) + " up -d\n"
	} else {
		script += "echo \"build " + plan.BuildID + " ready; see " + domain.ManifestFileName + "\"\n"
	}

	path := filepath.Join(opts.OutputDir, domain.DeployScriptFileName)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return err
	}

	state.appendArtifact(domain.BuildArtifact{
		Type:      domain.ArtifactDeployScript,
		Path:      path,
		SizeBytes: int64(len(script)),
		Metadata:  map[string]string{"build_id": plan.BuildID},
	})
	return nil
}
