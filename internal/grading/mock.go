package grading

import (
	"context"
	"sync"
)

// MockCall records one Grade invocation.
type MockCall struct {
	SessionID  int64
	QuestionID int64
	Answer     string
}

// MockResponse is a canned response for the MockGrader.
type MockResponse struct {
	Result *Result
	Err    error
}

// MockGrader is a deterministic Grader for testing. It returns canned
// responses in FIFO order and records every call. When the queue is empty
// it keeps returning the last response, or ErrGraderUnavailable if none
// were ever queued. Blocking can be simulated via Gate.
type MockGrader struct {
	mu        sync.Mutex
	responses []MockResponse
	last      *MockResponse
	calls     []MockCall

	// Gate, when non-nil, is received from before each response is
	// returned; closing or sending unblocks one call. Grade also returns
	// early with ctx.Err() if the context is cancelled while gated.
	Gate chan struct{}
}

// NewMockGrader creates a MockGrader with the given canned responses.
func NewMockGrader(responses ...MockResponse) *MockGrader {
	return &MockGrader{responses: responses}
}

func (m *MockGrader) Grade(ctx context.Context, sessionID, questionID int64, answer string) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{SessionID: sessionID, QuestionID: questionID, Answer: answer})
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		if m.last != nil {
			return m.last.Result, m.last.Err
		}
		return nil, &ErrGraderUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	m.last = &resp
	return resp.Result, resp.Err
}

// AddResponse appends a canned response to the queue.
func (m *MockGrader) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Grade calls made.
func (m *MockGrader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockGrader) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
