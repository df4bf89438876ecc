package orchestrator

import (
	"context"

	"go.trai.ch/recall/internal/core/ports"
)

// nopTelemetry discards all recordings. It backs orchestrators built without
// a presentation layer, such as library embedders.
type nopTelemetry struct{}

func (nopTelemetry) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, nopVertex{}
}

func (nopTelemetry) Close() error { return nil }

type nopVertex struct{}

func (nopVertex) Log(string)     {}
func (nopVertex) Cached()        {}
func (nopVertex) Complete(error) {}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}
