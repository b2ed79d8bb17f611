package llm

import (
	"context"
	"fmt"
)

// Client is the contract this system requires from an external generative
// model: given a prompt, return a text completion. Calls may fail for any
// reason (timeout, quota, malformed response), and the client may be
// entirely absent. Callers must treat a nil Client exactly like one that
// always fails.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RetryableError indicates a transient upstream failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
