// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/relay/internal/adapters/cache"
	_ "go.trai.ch/relay/internal/adapters/config"
	_ "go.trai.ch/relay/internal/adapters/logger"
	_ "go.trai.ch/relay/internal/adapters/mcp"
	_ "go.trai.ch/relay/internal/adapters/policy"
	_ "go.trai.ch/relay/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/relay/internal/app"
	_ "go.trai.ch/relay/internal/engine/registry"
	_ "go.trai.ch/relay/internal/engine/reload"
)
