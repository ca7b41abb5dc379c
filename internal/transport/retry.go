// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// Timer abstracts waiting between attempts so tests can record delays.
type Timer = retry.Timer

// RetryPolicy retries rate-limited calls with exponential backoff and jitter.
type RetryPolicy struct {
	Base       time.Duration
	MaxRetries int
	MaxJitter  time.Duration

	// Timer overrides the real clock when set.
	Timer Timer
}

// DefaultRetryPolicy waits 400ms·2^attempt plus up to 250ms jitter, five times at most.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Base:       400 * time.Millisecond,
		MaxRetries: 5,
		MaxJitter:  250 * time.Millisecond,
	}
}

// Backoff returns the delay before retry number attempt (0-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := p.Base << uint(attempt)
	if p.MaxJitter > 0 {
		d += time.Duration(rand.Int64N(int64(p.MaxJitter) + 1))
	}
	return d
}

// Do runs fn until it succeeds, fails with something other than a 429,
// or MaxRetries retries have been spent. The last error is returned as is.
func (p RetryPolicy) Do(ctx context.Context, log zerolog.Logger, fn func() error) error {
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}

	attempt := 0
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(retries) + 1),
		retry.RetryIf(IsRateLimited),
		retry.LastErrorOnly(true),
		retry.DelayType(func(_ uint, _ error, _ *retry.Config) time.Duration {
			d := p.Backoff(attempt)
			attempt++
			return d
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Uint("attempt", n+1).Err(err).Msg("rate limited, backing off")
		}),
	}
	if p.Timer != nil {
		opts = append(opts, retry.WithTimer(p.Timer))
	}
	return retry.Do(fn, opts...)
}
