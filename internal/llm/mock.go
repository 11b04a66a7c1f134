package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content string
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	pingErr   error
	// OnGenerate, when set, runs before each canned response is popped.
	OnGenerate func(call int)
	// OnPing, when set, runs at the start of every Ping.
	OnPing func(ctx context.Context)
	// Fallback, when set, answers calls made after the queue is empty.
	Fallback func(call int) MockResponse
	Calls    []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewCannedProvider returns a MockProvider that answers every call with a
// numbered markdown idea. It backs the "mock" provider setting.
func NewCannedProvider() *MockProvider {
	m := NewMockProvider()
	m.Fallback = func(call int) MockResponse {
		return MockResponse{
			Content: fmt.Sprintf("# Sample Idea %d\n\nPlaceholder idea from the mock provider.\n", call),
			Usage:   Usage{InputTokens: 8, OutputTokens: 12, TotalTokens: 20},
		}
	}
	return m
}

// Generate returns the next canned response. With the queue empty it
// answers from Fallback, or fails with ErrProviderUnavailable.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	call := len(m.Calls)
	hook := m.OnGenerate
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.Fallback != nil:
		resp = m.Fallback(call)
	default:
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content: resp.Content,
		Usage:   resp.Usage,
		Model:   "mock",
	}, nil
}

// Ping returns the error set with SetPingError, nil by default.
func (m *MockProvider) Ping(ctx context.Context) error {
	m.mu.Lock()
	hook := m.OnPing
	m.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// SetPingError makes subsequent Ping calls fail with err.
func (m *MockProvider) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
