package app

import (
	"github.com/farm-framework/forge/internal/core/ports"
)

// Components bundles the fully wired application for the CLI entry point.
type Components struct {
	App    *App
	Logger ports.Logger
	Tracer ports.Tracer
}
