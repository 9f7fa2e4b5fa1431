// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT

// Package tl2 implements a TL2 (Transactional Locking II) software
// transactional memory engine over a fixed-size, byte-addressable flat
// memory. Callers partition the memory into stripes and run closures
// through RunWrite/RunRead; the engine makes each closure appear atomic,
// isolated, and serializable with respect to every other concurrently
// running closure.
//
// A minimal counter, bumped from many goroutines:
//
//	s, _ := tl2.NewSTM(8, 8)
//	tl2.RunWrite(s, func(tx *tl2.WriteTxn) tl2.Result[struct{}] {
//		v, ok := tx.Load(0)
//		if !ok {
//			return tl2.RetryOutcome[struct{}]()
//		}
//		cur := binary.LittleEndian.Uint64(v)
//		binary.LittleEndian.PutUint64(v, cur+1)
//		tx.Store(0, v)
//		return tl2.Ok(struct{}{})
//	})
//
// The transaction body must be pure and replayable: the engine may invoke
// it any number of times before it finally commits or the caller aborts.
package tl2

// Outcome tags the result a transaction body signals back to the STM
// facade.
type Outcome int

const (
	// Committed means the body finished and would like its writes (if
	// any) committed.
	Committed Outcome = iota
	// Retry means the current snapshot isn't usable yet; re-run the body
	// against a fresh snapshot.
	Retry
	// Aborted means give up entirely; no commit happens and the facade
	// returns its "no result" sentinel.
	Aborted
)

// Result is what a transaction body returns: an Outcome tag plus, for
// Committed, the value to hand back to the caller of RunWrite/RunRead.
type Result[R any] struct {
	outcome Outcome
	value   R
}

// Ok signals that the body finished successfully and v should be returned
// once (if there is a write set) the commit succeeds.
func Ok[R any](v R) Result[R] {
	return Result[R]{outcome: Committed, value: v}
}

// RetryOutcome signals that the snapshot this attempt observed isn't
// usable yet; the facade will re-run the body against a fresh snapshot.
func RetryOutcome[R any]() Result[R] {
	return Result[R]{outcome: Retry}
}

// AbortOutcome signals that the body wants to give up entirely.
func AbortOutcome[R any]() Result[R] {
	return Result[R]{outcome: Aborted}
}

// STM is the facade over one Memory: the retry loops that drive a
// transaction body to a conclusion.
type STM struct {
	mem     *Memory
	backoff BackoffPolicy
	stats   *Stats
	logger  Logger
}

// NewSTM constructs an STM over a freshly allocated, zero-initialized
// memory region. memorySizeBytes must be a positive multiple of
// stripeWidthBytes, which must itself be a power of two.
func NewSTM(memorySizeBytes, stripeWidthBytes int, opts ...Option) (*STM, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mem, err := NewMemory(memorySizeBytes, stripeWidthBytes,
		WithLogger(cfg.logger), WithStats(cfg.stats))
	if err != nil {
		return nil, err
	}

	return &STM{
		mem:     mem,
		backoff: cfg.backoff,
		stats:   cfg.stats,
		logger:  cfg.logger,
	}, nil
}

// Stats returns a point-in-time snapshot of this engine's observability
// counters.
func (s *STM) Stats() Snapshot { return s.stats.snapshot() }

// Size returns the total memory size in bytes.
func (s *STM) Size() int { return s.mem.Size() }

// StripeWidth returns the configured stripe width in bytes.
func (s *STM) StripeWidth() int { return s.mem.StripeWidth() }

// RunWrite repeatedly constructs a fresh write transaction and invokes
// body with it until the body's signaled Result commits successfully or
// signals Aborted. Returns (value, true) on commit, (zero, false) on
// Aborted.
func RunWrite[R any](s *STM, body func(*WriteTxn) Result[R]) (R, bool) {
	attempt := 0
	for {
		tx := newWriteTxn(s.mem)
		res := body(tx)

		switch res.outcome {
		case Aborted:
			tx.releaseHeldLocks()
			s.stats.recordAbort()
			var zero R
			return zero, false

		case Retry:
			tx.releaseHeldLocks()
			s.stats.recordRetry()
			attempt++
			s.logger.Debug("write transaction retrying", "attempt", attempt, "reason", "user-signaled")
			s.backoff.Wait(attempt)
			continue

		default: // Committed
			if tx.attemptCommit() == commitOK {
				s.stats.recordCommit()
				return res.value, true
			}
			s.stats.recordRetry()
			attempt++
			s.logger.Debug("write transaction retrying", "attempt", attempt, "reason", "commit-conflict")
			s.backoff.Wait(attempt)
			continue
		}
	}
}

// RunRead repeatedly constructs a fresh read transaction and invokes body
// with it until the body's signaled Result succeeds or signals Aborted.
// There is no lock acquisition and no commit step: a read transaction that
// reaches Committed without having aborted mid-flight is done.
func RunRead[R any](s *STM, body func(*ReadTxn) Result[R]) (R, bool) {
	attempt := 0
	for {
		tx := newReadTxn(s.mem)
		res := body(tx)

		switch res.outcome {
		case Aborted:
			s.stats.recordAbort()
			var zero R
			return zero, false

		case Retry:
			s.stats.recordRetry()
			attempt++
			s.backoff.Wait(attempt)
			continue

		default: // Committed
			if tx.aborted {
				s.stats.recordRetry()
				attempt++
				s.backoff.Wait(attempt)
				continue
			}
			s.stats.recordCommit()
			return res.value, true
		}
	}
}
