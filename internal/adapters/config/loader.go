// Package config provides the configuration loader for forge.
package config

import (
	"os"
	"path/filepath"

	"github.com/farm-framework/forge/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the project configuration file name.
const DefaultFilename = "forge.yaml"

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given working directory.
func (l *FileConfigLoader) Load(cwd string) (*domain.ProjectConfig, error) {
	filename := l.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	return Load(filepath.Join(cwd, filename))
}

// Load reads a configuration file from the given path.
func Load(path string) (*domain.ProjectConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file Forgefile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	if file.Name == "" {
		return nil, zerr.With(zerr.New("project name is required"), "path", path)
	}

	return toDomain(&file), nil
}

func toDomain(file *Forgefile) *domain.ProjectConfig {
	cfg := &domain.ProjectConfig{
		Name:    file.Name,
		Version: file.Version,
		Frontend: domain.FrontendConfig{
			SourceDir: file.Frontend.SourceDir,
			Manifest:  file.Frontend.Manifest,
			Command:   file.Frontend.Command,
		},
		Backend: domain.BackendConfig{
			SourceDir:      file.Backend.SourceDir,
			Manifest:       file.Backend.Manifest,
			SchemaCommand:  file.Backend.SchemaCommand,
			TypeGenCommand: file.Backend.TypegenCommand,
		},
		AIModels: domain.AIModelsConfig{
			ExportCommand: file.AIModels.ExportCommand,
		},
		Container: domain.ContainerConfig{
			BuildCommand: file.Container.BuildCommand,
		},
	}

	for _, m := range file.AIModels.Models {
		cfg.AIModels.Models = append(cfg.AIModels.Models, domain.ModelSpec{
			Name:         m.Name,
			Provider:     m.Provider,
			Quantization: m.Quantization,
			ContextSize:  m.ContextSize,
			Export:       m.Export,
		})
	}

	for _, img := range file.Container.Images {
		cfg.Container.Images = append(cfg.Container.Images, domain.ImageTemplate{
			Name:       img.Name,
			Dockerfile: img.Dockerfile,
			Context:    img.Context,
			Tag:        img.Tag,
			BuildArgs:  img.BuildArgs,
		})
	}

	for _, p := range file.Plugins {
		cfg.Plugins = append(cfg.Plugins, domain.PluginHook{
			Name:    p.Name,
			Command: p.Command,
		})
	}

	return cfg
}
