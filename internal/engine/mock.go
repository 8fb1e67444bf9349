package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MockEngineName is the name the mock engine registers under.
const MockEngineName = "mock"

// Call records one Recognize invocation on a MockEngine.
type Call struct {
	ImageBytes int
	Language   string
	Settings   Settings
}

// MockEngine is an Engine for testing.
type MockEngine struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // fail after N requests (0 = never)
	ResponseText string

	// Respond, when set, computes the response instead of ResponseText.
	Respond func(image []byte, lang string, s Settings) (string, error)

	requestCount atomic.Int64

	mu    sync.Mutex
	calls []Call
}

// NewMockEngine creates a mock engine returning text for every image.
func NewMockEngine(text string) *MockEngine {
	return &MockEngine{ResponseText: text}
}

// Name returns the engine identifier.
func (m *MockEngine) Name() string { return MockEngineName }

// Recognize returns the scripted response.
func (m *MockEngine) Recognize(ctx context.Context, image []byte, lang string, s Settings) (string, error) {
	count := m.requestCount.Add(1)

	m.mu.Lock()
	m.calls = append(m.calls, Call{ImageBytes: len(image), Language: lang, Settings: s})
	m.mu.Unlock()

	if m.ShouldFail {
		return "", fmt.Errorf("%w: mock engine configured to fail", ErrRecognition)
	}
	if m.FailAfter > 0 && int(count) > m.FailAfter {
		return "", fmt.Errorf("%w: mock engine failed after %d requests", ErrRecognition, m.FailAfter)
	}

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.Respond != nil {
		return m.Respond(image, lang, s)
	}
	return m.ResponseText, nil
}

// RequestCount returns the number of requests made.
func (m *MockEngine) RequestCount() int64 {
	return m.requestCount.Load()
}

// Calls returns a copy of every recorded call.
func (m *MockEngine) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Reset clears the request counter and call log.
func (m *MockEngine) Reset() {
	m.requestCount.Store(0)
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

var _ Engine = (*MockEngine)(nil)
