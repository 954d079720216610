package util

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry runs op up to attempts times with a fixed delay between tries.
// Non-retriable errors (per IsRetryable) stop immediately; context
// cancellation stops between attempts. Retrying happens only here and in
// the inventory client's per-call layer — callers above those layers see
// the final error.
func Retry(ctx context.Context, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
