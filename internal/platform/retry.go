package platform

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry configuration for a single category fetch.
const (
	retryInitialInterval = 500 * time.Millisecond
	retryMaxElapsed      = 20 * time.Second
)

// newRetryBackoff returns a fresh exponential backoff. BackOff values are
// stateful and must not be shared between fetches.
var newRetryBackoff = func() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// Retry runs op until it succeeds, fails with a non-retryable error, the
// backoff window elapses or ctx is done. Only the final error is returned.
func Retry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err != nil && IsRetryable(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(newRetryBackoff(), ctx))
}
