// Package main is the entry point for the recall tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/recall/cmd/recall/commands"
	"go.trai.ch/recall/internal/adapters/config"
	"go.trai.ch/recall/internal/app"
	"go.trai.ch/recall/internal/core/domain"
	_ "go.trai.ch/recall/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	cli := commands.New(components.App)
	cli.SetConfigHook(func(path string) {
		if loader, ok := components.ConfigLoader.(*config.FileLoader); ok {
			loader.Filename = path
		}
	})

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		if errors.Is(err, domain.ErrProblemsReported) {
			return 2
		}
		return 1
	}
	return 0
}
