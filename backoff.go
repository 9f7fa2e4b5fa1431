// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

import (
	"time"

	"github.com/agilira/go-timecache"
)

// BackoffPolicy is consulted by RunWrite/RunRead between failed attempts.
// It never blocks the transaction types themselves — only the facade's
// retry loop. The spec permits but does not require contention management;
// NoBackoff is the zero-overhead default that matches the un-optioned
// behavior.
type BackoffPolicy interface {
	// Wait is called with the number of attempts made so far (1 on the
	// first retry). It may sleep, or return immediately.
	Wait(attempt int)
}

// NoBackoff never sleeps: the facade spins as fast as it can retry.
type NoBackoff struct{}

func (NoBackoff) Wait(attempt int) {}

// ExponentialBackoff doubles a base delay per attempt, capped at Max, with
// jitter derived from go-timecache's cached monotonic clock so no
// math/rand dependency is needed for entropy.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// NewExponentialBackoff returns a policy with sensible defaults if base or
// max are left zero.
func NewExponentialBackoff(base, max time.Duration) ExponentialBackoff {
	if base <= 0 {
		base = 50 * time.Microsecond
	}
	if max <= 0 {
		max = 10 * time.Millisecond
	}
	return ExponentialBackoff{Base: base, Max: max}
}

func (b ExponentialBackoff) Wait(attempt int) {
	if attempt <= 0 {
		return
	}
	delay := b.Base
	for i := 1; i < attempt && delay < b.Max; i++ {
		delay *= 2
	}
	if delay > b.Max {
		delay = b.Max
	}
	// Jitter: mix the cached clock's low bits into the delay so many
	// contending goroutines don't retry in lockstep.
	now := timecache.CachedTimeNano()
	jitter := time.Duration(now%int64(delay/2+1)) - delay/4
	delay += jitter
	if delay < 0 {
		delay = b.Base
	}
	time.Sleep(delay)
}
