// Package testutil provides shared test helpers for taskloop.
package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultLoopTimeout bounds tests that drive a loop to completion. Loops
// under test are expected to finish well inside it; hitting the timeout
// means the termination condition never fired.
const DefaultLoopTimeout = 5 * time.Second

// ContextWithTimeout creates a context with the specified timeout.
// This is a convenience wrapper that logs the timeout for debugging.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	t.Logf("Context timeout: %v", timeout)
	return context.WithTimeout(context.Background(), timeout)
}

// LoopContext creates a context bounded by DefaultLoopTimeout.
func LoopContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTimeout(t, DefaultLoopTimeout)
}

// WaitDone fails the test if done is not closed within timeout.
func WaitDone(t *testing.T, done <-chan struct{}, timeout time.Duration) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for completion")
	}
}
