// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxRPS is the request cap used when none is configured.
const DefaultMaxRPS = 3

// Limiter enforces a fixed minimum spacing between outbound calls.
//
// One Limiter is shared by every Transport in a process; all callers wait on it
// regardless of which endpoint they hit.
type Limiter struct {
	interval time.Duration
	lim      *rate.Limiter
}

// NewLimiter returns a limiter spacing calls ceil(1000/rps) milliseconds apart.
// A non-positive rps disables limiting.
func NewLimiter(rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	interval := time.Duration(math.Ceil(1000/rps)) * time.Millisecond
	return NewLimiterInterval(interval)
}

// NewLimiterInterval returns a limiter with an explicit minimum spacing.
func NewLimiterInterval(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{interval: interval, lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// Interval returns the minimum spacing between calls, zero when unlimited.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until the next call slot or until ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}
