package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the backend returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the backend answered but the body could
// not be used (missing, truncated or not JSON).
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the backend is down, unreachable or
// rejected the request with an HTTP error status.
type ErrProviderUnavailable struct {
	StatusCode int
	Err        error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("LLM provider unavailable (HTTP %d): %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrLivenessCheckFailed is returned when the pre-flight probe fails.
// No job may start after it.
type ErrLivenessCheckFailed struct {
	Host string
	Err  error
}

func (e *ErrLivenessCheckFailed) Error() string {
	return fmt.Sprintf("could not reach Ollama API at %s, make sure Ollama is running: %v", e.Host, e.Err)
}

func (e *ErrLivenessCheckFailed) Unwrap() error { return e.Err }

// IsTransport reports whether err is a network or HTTP failure talking to
// the backend. Transport failures are recoverable by the batch loop;
// everything else aborts a run.
func IsTransport(err error) bool {
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var unavail *ErrProviderUnavailable
	if errors.As(err, &unavail) {
		return true
	}
	var inv *ErrInvalidResponse
	return errors.As(err, &inv)
}
