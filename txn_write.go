// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

// WriteTxn is a single attempt at a read-modify-write transaction. It is
// created fresh for every attempt by the STM facade, mutated only by the
// goroutine running that attempt, and discarded at the end of the attempt
// — any locks it still holds are released before it is dropped.
type WriteTxn struct {
	mem *Memory

	rv uint64 // read version: the clock sample taken at the start of this attempt

	readSet  []int          // stripe addresses observed by Load, order irrelevant
	writeSet map[int][]byte // pending addr -> stripe value, last Store wins
	locked   []int          // addresses whose lock we currently hold

	aborted bool
}

func newWriteTxn(mem *Memory) *WriteTxn {
	return &WriteTxn{
		mem: mem,
		rv:  mem.clock.sample(),
	}
}

// Load returns the stripe at addr as observed by this transaction's
// snapshot, or (nil, false) if the transaction has aborted (the caller
// should signal Retry). Panics on a misaligned or out-of-range address.
func (tx *WriteTxn) Load(addr int) ([]byte, bool) {
	tx.mem.checkAddr(addr)

	if tx.aborted {
		return nil, false
	}

	tx.readSet = append(tx.readSet, addr)

	if val, ok := tx.writeSet[addr]; ok {
		return val, true
	}

	lock := tx.mem.lockAt(addr)

	// Pre-check: the stripe must be unlocked and no newer than our snapshot.
	if !lock.testUnmodified(tx.rv) {
		tx.markAborted()
		return nil, false
	}

	// The original load. Go's atomic package gives every Load/Store here
	// sequential consistency, which subsumes the acquire/seqcst fences the
	// spec calls for around this copy — there is no weaker mode to opt
	// into, so no separate fence call is needed.
	val := tx.mem.readStripe(addr)

	// Post-check: re-read the lock word; if it moved, a concurrent writer
	// raced us and our copy may be torn or stale.
	if !lock.testUnmodified(tx.rv) {
		tx.markAborted()
		return nil, false
	}

	return val, true
}

// Store buffers val for address addr; nothing is written to shared memory
// until commit. Panics on a misaligned or out-of-range address, or if val
// is not exactly the configured stripe width.
func (tx *WriteTxn) Store(addr int, val []byte) {
	tx.mem.checkAddr(addr)
	if len(val) != tx.mem.width {
		panic(NewErrInvalidStripeValue(len(val), tx.mem.width))
	}
	if tx.writeSet == nil {
		tx.writeSet = make(map[int][]byte, 5)
	}
	buf := make([]byte, tx.mem.width)
	copy(buf, val)
	tx.writeSet[addr] = buf
}

func (tx *WriteTxn) markAborted() {
	tx.aborted = true
}

// releaseHeldLocks unlocks every stripe this attempt acquired, leaving
// their versions untouched. Idempotent; safe to call whether the attempt
// committed, aborted, or is merely being discarded after a user Abort.
func (tx *WriteTxn) releaseHeldLocks() {
	for _, addr := range tx.locked {
		tx.mem.lockAt(addr).release()
	}
	tx.locked = tx.locked[:0]
}

// commitResult is the outcome of attemptCommit.
type commitResult int

const (
	commitOK commitResult = iota
	commitConflict
)

// attemptCommit runs the TL2 commit protocol for a transaction whose body
// returned successfully and did not abort during execution. It either
// commits (publishing new versions and releasing locks) or signals a
// conflict, in which case the caller must discard this attempt and retry
// with a fresh transaction.
func (tx *WriteTxn) attemptCommit() commitResult {
	if tx.aborted {
		return commitConflict
	}

	// Read-only transactions have nothing to lock or publish: an empty
	// write set never bumps the global clock.
	if len(tx.writeSet) == 0 {
		return commitOK
	}

	// Step 1: lock the write set. Order doesn't matter — any acquisition
	// failure aborts immediately, so there's no deadlock to order away.
	tx.locked = tx.locked[:0]
	for addr := range tx.writeSet {
		lock := tx.mem.lockAt(addr)
		if !lock.tryAcquire() {
			tx.mem.stats.recordConflict()
			tx.releaseHeldLocks()
			return commitConflict
		}
		tx.locked = append(tx.locked, addr)
	}

	// Step 2: increment the global clock. This fetch-and-add is the
	// linearization point for this transaction.
	wv := tx.mem.clock.increment()

	// Step 3/4: validate the read set, skipping it entirely on the fast
	// path where we know no other transaction committed in between.
	if wv != tx.rv+1 {
		for _, addr := range tx.readSet {
			if _, inWriteSet := tx.writeSet[addr]; inWriteSet {
				// We hold this stripe's lock ourselves; only the version
				// bits matter, and they must not exceed our read version.
				_, version := tx.mem.lockAt(addr).observe()
				if version > tx.rv {
					tx.releaseHeldLocks()
					return commitConflict
				}
				continue
			}
			if !tx.mem.lockAt(addr).testUnmodified(tx.rv) {
				tx.releaseHeldLocks()
				return commitConflict
			}
		}
	}

	// Step 5: commit. Copy every buffered stripe into the backing memory,
	// then publish new versions (Release ordering publishes those writes
	// to any future reader of the stripe).
	for addr, val := range tx.writeSet {
		tx.mem.writeStripe(addr, val)
	}
	for _, addr := range tx.locked {
		tx.mem.lockAt(addr).publish(wv)
	}
	tx.locked = tx.locked[:0]

	return commitOK
}
