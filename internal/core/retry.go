package core

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/yojanamitra-core/server/internal/core/errx"
)

const storeRetryAttempts = 3

// RetryStore runs op with bounded exponential backoff. Only store outages
// (KindStoreUnavailable) are retried, three attempts total; any other error
// returns immediately. The caller decides what reduced mode looks like when
// the outage survives all attempts.
func RetryStore(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errx.KindOf(err) == errx.KindStoreUnavailable {
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(wrapped, backoff.WithContext(
		backoff.WithMaxRetries(policy, storeRetryAttempts-1), ctx))
}
