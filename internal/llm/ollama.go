package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements Provider against a local Ollama server using
// the non-streaming /api/generate endpoint.
type OllamaProvider struct {
	client *api.Client
	host   string
	model  string
}

// NewOllamaProvider creates a new Ollama provider. A nil httpClient
// falls back to http.DefaultClient.
func NewOllamaProvider(cfg OllamaConfig, httpClient *http.Client) (*OllamaProvider, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	// The api client drops the status code whenever the body carries an
	// error message, so the transport keeps it for mapOllamaError.
	c := *httpClient
	c.Transport = &statusTransport{base: c.Transport}

	return &OllamaProvider{
		client: api.NewClient(base, &c),
		host:   host,
		model:  model,
	}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	stream := false
	genReq := &api.GenerateRequest{
		Model:  model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: &stream,
	}
	if req.Temperature > 0 {
		genReq.Options = map[string]any{"temperature": req.Temperature}
	}

	// With streaming off the server answers with a single object, so the
	// callback fires at most once.
	ctx, status := withResponseStatus(ctx)
	var final *api.GenerateResponse
	err := p.client.Generate(ctx, genReq, func(r api.GenerateResponse) error {
		final = &r
		return nil
	})
	if err != nil {
		return nil, mapOllamaError(err, status)
	}
	if final == nil {
		return nil, &ErrInvalidResponse{Err: errors.New("empty response body")}
	}

	respModel := final.Model
	if respModel == "" {
		respModel = model
	}

	return &Response{
		Content: final.Response,
		Usage: Usage{
			InputTokens:  final.PromptEvalCount,
			OutputTokens: final.EvalCount,
			TotalTokens:  final.PromptEvalCount + final.EvalCount,
		},
		Model:    respModel,
		Duration: final.TotalDuration,
	}, nil
}

// Ping lists local models (GET /api/tags). Any failure is reported as
// ErrLivenessCheckFailed.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, status := withResponseStatus(ctx)
	if _, err := p.client.List(ctx); err != nil {
		return &ErrLivenessCheckFailed{Host: p.host, Err: mapOllamaError(err, status)}
	}
	return nil
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

// Host returns the base URL the provider talks to.
func (p *OllamaProvider) Host() string {
	return p.host
}

// mapOllamaError classifies a client error. status holds what the
// transport saw for the request and takes precedence over the body.
func mapOllamaError(err error, status *responseStatus) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	code, retryAfter := status.get()
	var statusErr api.StatusError
	if errors.As(err, &statusErr) && code == 0 {
		code = statusErr.StatusCode
	}

	switch {
	case code == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case code >= http.StatusBadRequest:
		return &ErrProviderUnavailable{StatusCode: code, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &ErrInvalidResponse{Err: err}
	}

	return &ErrProviderUnavailable{Err: err}
}

type responseStatusKey struct{}

// responseStatus records the HTTP status and Retry-After of one request.
type responseStatus struct {
	mu         sync.Mutex
	code       int
	retryAfter time.Duration
}

func withResponseStatus(ctx context.Context) (context.Context, *responseStatus) {
	st := &responseStatus{}
	return context.WithValue(ctx, responseStatusKey{}, st), st
}

func (s *responseStatus) set(code int, retryAfter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	s.retryAfter = retryAfter
}

func (s *responseStatus) get() (int, time.Duration) {
	if s == nil {
		return 0, 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code, s.retryAfter
}

// statusTransport copies the response status into the request's
// responseStatus, if it has one.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if st, ok := req.Context().Value(responseStatusKey{}).(*responseStatus); ok {
		st.set(resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	}
	return resp, nil
}

// parseRetryAfter accepts delay-seconds or an HTTP date. Anything else,
// and dates in the past, yield zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
