package synth

import "context"

// MockEngine - placeholder engine for tests and dry runs. It writes no
// audio; clips built on it carry estimated durations.
type MockEngine struct {
	cfg Config

	// Calls records every request, in order.
	Calls []Request
	// FailTexts lists narration texts whose synthesis should fail.
	FailTexts map[string]bool
}

func NewMockEngine(cfg Config) *MockEngine {
	return &MockEngine{cfg: cfg, FailTexts: map[string]bool{}}
}

func (m *MockEngine) Name() string    { return EngineTypeMock.String() }
func (m *MockEngine) FileExt() string { return ".wav" }

func (m *MockEngine) CheckAvailable() error { return nil }

func (m *MockEngine) Synthesize(ctx context.Context, req Request) (Result, error) {
	m.Calls = append(m.Calls, req)
	if m.FailTexts[req.Text] {
		return Result{}, errMockFailure
	}
	return Result{OutFile: req.OutFile, Produced: false}, nil
}

func (m *MockEngine) Voices() ([]string, error) {
	return []string{"mock-voice"}, nil
}

type mockError string

func (e mockError) Error() string { return string(e) }

const errMockFailure = mockError("mock synthesis failure")
