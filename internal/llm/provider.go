package llm

import (
	"context"
	"time"
)

// Provider is the core abstraction for text generation.
// Consumers call Generate with a Request and receive the raw text the
// model produced.
type Provider interface {
	// Generate sends a single, non-streaming generation request and
	// returns the model's text. It blocks until the full response has
	// arrived or the context is done.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Ping is a lightweight liveness probe against the backend. A nil
	// error means the backend accepted the probe.
	Ping(ctx context.Context) error

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Prompt is the user prompt sent verbatim.
	Prompt string

	// Model overrides the provider's configured model when non-empty.
	Model string

	// Temperature controls randomness. Zero leaves the backend default.
	Temperature float64
}

// Response holds the model's output.
type Response struct {
	// Content is the generated text, untouched.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// Duration is the server-reported total generation time.
	Duration time.Duration
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
