package llm

import (
	"fmt"
	"net/url"
	"time"
)

const (
	// DefaultHost is where a local Ollama listens out of the box.
	DefaultHost = "http://localhost:11434"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3.2:latest"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend. Values: "ollama", "mock".
	Provider string

	Ollama OllamaConfig
	Retry  RetryConfig

	// Timeout is the maximum duration for a single generation request
	// (including retries). Zero means no limit; local models can be slow.
	Timeout time.Duration
}

// OllamaConfig holds Ollama-specific configuration.
type OllamaConfig struct {
	Host  string // Default: "http://localhost:11434"
	Model string // Default: "llama3.2:latest"
}

// RetryConfig configures in-request retry of transient failures.
// MaxAttempts of 1 disables retry: each failure surfaces to the caller
// immediately.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "ollama",
		Ollama: OllamaConfig{
			Host:  DefaultHost,
			Model: DefaultModel,
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// Validate checks that the selected provider is usable.
func (c Config) Validate() error {
	switch c.Provider {
	case "ollama":
		if c.Ollama.Model == "" {
			return fmt.Errorf("ollama model is required")
		}
		u, err := url.Parse(c.Ollama.Host)
		if err != nil {
			return fmt.Errorf("invalid ollama host %q: %w", c.Ollama.Host, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid ollama host %q: scheme must be http or https", c.Ollama.Host)
		}
	case "mock":
		// Nothing to check.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1, got %g", c.Retry.Multiplier)
	}
	return nil
}
