// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

// config holds the optional, constructor-time configuration for a Memory
// or STM. Zero-value options leave behavior unchanged: no logging, no
// backoff, private stats.
type config struct {
	logger  Logger
	backoff BackoffPolicy
	stats   *Stats
}

func defaultConfig() config {
	return config{
		logger:  NoOpLogger{},
		backoff: NoBackoff{},
		stats:   &Stats{},
	}
}

// Option configures a Memory or STM at construction time.
type Option func(*config)

// WithLogger installs a Logger for precondition-violation diagnostics and,
// at Debug level, write-transaction retry bookkeeping.
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBackoff installs a contention-management policy consulted by the
// retry loop between failed attempts. The default, NoBackoff, spins with
// no delay.
func WithBackoff(b BackoffPolicy) Option {
	return func(c *config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithStats shares a Stats instance across multiple STM/Memory values,
// e.g. to aggregate counters across a pool of engines under test.
func WithStats(s *Stats) Option {
	return func(c *config) {
		if s != nil {
			c.stats = s
		}
	}
}
