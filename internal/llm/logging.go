package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/ideate/internal/store"
)

// LoggingProvider is a decorator that logs every request and, when an
// event repo is configured, records it as an event.
type LoggingProvider struct {
	inner     Provider
	log       zerolog.Logger
	eventRepo store.EventRepo
	provider  string
}

// WithLogging wraps a Provider with request logging. repo may be nil.
func WithLogging(p Provider, providerName string, log zerolog.Logger, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, log: log, eventRepo: repo, provider: providerName}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)

	model := req.Model
	if model == "" {
		model = l.inner.ModelID()
	}

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       model,
		Purpose:     purpose,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Content
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn().Err(err).
			Str("model", data.Model).
			Str("purpose", purpose).
			Dur("latency", latency).
			Msg("generation failed")
	} else {
		l.log.Debug().
			Str("model", data.Model).
			Str("purpose", purpose).
			Int("input_tokens", data.InputTokens).
			Int("output_tokens", data.OutputTokens).
			Dur("latency", latency).
			Msg("generation complete")
	}

	// Record the event but don't fail the request if recording fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn().Err(logErr).Msg("failed to record LLM request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) Ping(ctx context.Context) error {
	err := l.inner.Ping(ctx)
	if err != nil {
		l.log.Debug().Err(err).Msg("liveness probe failed")
	}
	return err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	b.WriteString("[user]\n")
	b.WriteString(req.Prompt)
	b.WriteString("\n")

	return b.String()
}
