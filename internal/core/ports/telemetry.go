package ports

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records the progress of a cache pass for the presentation layer.
type Telemetry interface {
	// Record starts recording a new vertex for a phase of the pass.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded phase.
type Vertex interface {
	// Log attaches a line of output to the vertex.
	Log(msg string)
	// Cached marks the vertex as having been served from cache.
	Cached()
	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)
}
