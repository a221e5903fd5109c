package ai

import "context"

// Descriptor is the static identity of a backend adapter. One value per
// adapter type, never mutated.
type Descriptor struct {
	Name              string
	SupportsStreaming bool
}

// Provider generates text from an LLM backend. Adapters return *ProviderError
// for every failure so the engine can classify them.
type Provider interface {
	Descriptor() Descriptor
	// Model reports the model the provider will generate with.
	Model() string
	// Generate sends prompt with an optional system prompt and returns the
	// raw model text.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Initializer is implemented by providers that need setup before first use
// (service startup, model verification). Initialize must be idempotent.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// HealthChecker is implemented by providers that can probe the backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Liveness is implemented by providers whose availability can change after
// initialization (a local service that stops, for example).
type Liveness interface {
	Available(ctx context.Context) bool
}

// StatusReporter exposes provider internals for diagnostics.
type StatusReporter interface {
	Status(ctx context.Context) map[string]any
}
