package core

import "context"

// Provider abstracts a locally-installed AI CLI tool.
type Provider interface {
	// Name returns the provider identifier (e.g. "claude").
	Name() string

	// Ping verifies the underlying CLI is installed and responding.
	Ping(ctx context.Context) error

	// GenerateText runs one prompt and returns the generated text.
	GenerateText(ctx context.Context, req Request) (*TextResult, error)

	// GenerateObject runs one prompt and returns a parsed JSON object
	// conforming to req.Schema. Fails before invocation when no schema
	// is supplied.
	GenerateObject(ctx context.Context, req Request) (*ObjectResult, error)

	// StreamText exposes GenerateText through a single-chunk stream shim.
	StreamText(ctx context.Context, req Request) (*TextStream, error)
}
