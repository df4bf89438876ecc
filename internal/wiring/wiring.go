// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/recall/internal/adapters/config"
	_ "go.trai.ch/recall/internal/adapters/logger"
	_ "go.trai.ch/recall/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/recall/internal/app"
)
