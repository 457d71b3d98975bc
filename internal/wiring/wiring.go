// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/farm-framework/forge/internal/adapters/cache"
	_ "github.com/farm-framework/forge/internal/adapters/config"
	_ "github.com/farm-framework/forge/internal/adapters/executors"
	_ "github.com/farm-framework/forge/internal/adapters/fs"
	_ "github.com/farm-framework/forge/internal/adapters/logger"
	_ "github.com/farm-framework/forge/internal/adapters/telemetry"
	// Register app nodes.
	_ "github.com/farm-framework/forge/internal/app"
)
