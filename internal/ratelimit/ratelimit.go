// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit spaces outbound calls to upstream literature providers.
//
// Each provider gets its own Limiter with the minimum interval its terms
// of service ask for. Callers block on Wait before every request so that
// bursts from concurrent searches still go out one at a time.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between calls.
type Limiter struct {
	l *rate.Limiter
}

// New returns a Limiter that allows one call per interval. A zero or
// negative interval disables limiting.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{l: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{l: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call is allowed or the context is done.
func (lm *Limiter) Wait(ctx context.Context) error {
	return lm.l.Wait(ctx)
}
