package model

import (
	"context"
	"sync"
)

// MockClient is a Client that returns scripted responses without network
// access. Used for deterministic tests and offline operation.
type MockClient struct {
	mu        sync.Mutex
	responses []Response
	errs      []error
	calls     []Request
}

// NewMockClient creates a MockClient that cycles through the given
// responses, repeating the last one once exhausted.
func NewMockClient(responses ...Response) *MockClient {
	return &MockClient{responses: responses}
}

// FailWith queues errors returned before any scripted responses.
func (m *MockClient) FailWith(errs ...error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(_ context.Context, req Request) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}

	if len(m.responses) == 0 {
		return PlainText(""), nil
	}

	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

// Calls returns a copy of every request seen so far.
func (m *MockClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
