package testsupport

import (
	"context"
	"sync"
)

// FakeExecutorCall records one invocation of the fake executor.
type FakeExecutorCall struct {
	Binary string
	Args   []string
}

// FakeExecutorResponse is one scripted response.
type FakeExecutorResponse struct {
	Stdout string
	Stderr string
	Err    error
}

// FakeExecutor replays scripted responses in order and records every call.
// Once the script is exhausted it keeps returning the final response.
type FakeExecutor struct {
	mu        sync.Mutex
	responses []FakeExecutorResponse
	calls     []FakeExecutorCall
}

// NewFakeExecutor builds an executor that replays the given responses.
func NewFakeExecutor(responses ...FakeExecutorResponse) *FakeExecutor {
	return &FakeExecutor{responses: responses}
}

// Run implements the exiftool executor seam.
func (f *FakeExecutor) Run(_ context.Context, binary string, args []string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, FakeExecutorCall{Binary: binary, Args: append([]string(nil), args...)})

	if len(f.responses) == 0 {
		return nil, nil, nil
	}
	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	return []byte(resp.Stdout), []byte(resp.Stderr), resp.Err
}

// Calls returns the recorded invocations.
func (f *FakeExecutor) Calls() []FakeExecutorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeExecutorCall(nil), f.calls...)
}
