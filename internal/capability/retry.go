// Package capability provides the adapters behind the reasoning capability
// contracts: the bulk analysis capability and the interactive escalation
// capability. Adapters receive read-only data and return new results; they
// never touch workflow state.
package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/contact-cleaner/internal/llm"
)

// UnavailableError reports a capability that stayed unreachable after a
// bounded number of attempts. It is always fatal for the run.
type UnavailableError struct {
	Capability string
	Attempts   int
	Cause      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s capability unavailable after %d attempts: %v", e.Capability, e.Attempts, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RetryPolicy bounds transient-failure retries at the capability call site.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// exponential backoff starting at two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
	}
}

// generateJSONWithRetry calls the LLM, retrying transient failures per the
// policy. Context cancellation stops the retry loop immediately.
func generateJSONWithRetry(ctx context.Context, client llm.Client, name, prompt string, tier llm.ModelTier, policy RetryPolicy) (string, error) {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}

	var lastErr error
	backoff := policy.InitialBackoff
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		raw, err := client.GenerateJSON(ctx, prompt, tier)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", &UnavailableError{Capability: name, Attempts: policy.MaxAttempts, Cause: lastErr}
}
