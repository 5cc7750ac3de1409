package infra

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// startupRetryWindow bounds how long the process waits for a dependency that
// is still coming up.
const startupRetryWindow = 30 * time.Second

// retryStartup runs op with exponential backoff until it succeeds, the window
// elapses or ctx is done. Wrap an error with backoff.Permanent to stop early.
func retryStartup(ctx context.Context, window time.Duration, op func(context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = window
	return backoff.Retry(func() error { return op(ctx) }, backoff.WithContext(policy, ctx))
}
