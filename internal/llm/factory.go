package llm

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/abhisek/ideate/internal/metrics"
	"github.com/abhisek/ideate/internal/store"
)

// Options carries the collaborators the provider middleware needs.
// Every field is optional.
type Options struct {
	Log        zerolog.Logger
	EventRepo  store.EventRepo
	Metrics    *metrics.Collector
	HTTPClient *http.Client
}

// NewProvider creates a Provider from configuration, wrapped with
// logging, metrics and (when MaxAttempts > 1) retry middleware.
func NewProvider(cfg Config, opts Options) (Provider, error) {
	var base Provider

	switch cfg.Provider {
	case "ollama":
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Timeout}
		}
		p, err := NewOllamaProvider(cfg.Ollama, httpClient)
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
		}
		base = p
	case "mock":
		base = NewCannedProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}

	// caller → retry → metrics → logging → base
	var p Provider = WithLogging(base, cfg.Provider, opts.Log, opts.EventRepo)
	if opts.Metrics != nil {
		p = WithMetrics(p, opts.Metrics)
	}
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry)
	}

	return p, nil
}
