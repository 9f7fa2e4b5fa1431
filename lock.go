// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

import "sync/atomic"

// lockBit is bit 63 of a versioned lock word: 1 means a writer currently
// holds the stripe's write-lock, 0 means it is free.
const lockBit = uint64(1) << 63

// versionMask isolates the low 63 bits: the last-committed version.
const versionMask = lockBit - 1

// versionedLock packs a one-bit write-lock flag and a 63-bit monotone
// version counter into a single atomic word, one per stripe. This is the
// keystone of TL2: a stripe's committed state and its lock state are
// observed and mutated together, atomically, without a separate mutex.
type versionedLock struct {
	word atomic.Uint64
}

// observe does an atomic load (sequentially consistent, as are all of Go's
// atomics) and splits it into lock state and version.
func (l *versionedLock) observe() (locked bool, version uint64) {
	v := l.word.Load()
	return v&lockBit != 0, v & versionMask
}

// testUnmodified reports whether the stripe is currently unlocked and its
// last-committed version is no newer than rv. A locked word always compares
// greater than any valid rv (rv never has bit 63 set), so a single
// comparison covers both conditions.
func (l *versionedLock) testUnmodified(rv uint64) bool {
	return l.word.Load() <= rv
}

// tryAcquire attempts to set the lock bit via compare-and-swap, preserving
// the version bits. Returns false if another transaction already holds the
// lock. Never blocks.
func (l *versionedLock) tryAcquire() bool {
	v := l.word.Load()
	if v&lockBit != 0 {
		return false
	}
	return l.word.CompareAndSwap(v, v|lockBit)
}

// release clears the lock bit, leaving the version untouched. Used on
// abort: the committed version must survive even though we never published
// a new one.
func (l *versionedLock) release() {
	for {
		v := l.word.Load()
		if v&lockBit == 0 {
			return
		}
		if l.word.CompareAndSwap(v, v&^lockBit) {
			return
		}
	}
}

// publish stores a new version with the lock bit implicitly cleared, using
// Release ordering so every byte this transaction wrote to the backing
// buffer is visible to any thread that subsequently observes this version.
func (l *versionedLock) publish(version uint64) {
	l.word.Store(version)
}

// globalClock is the single monotonically non-decreasing counter that
// orders committed write transactions and names read snapshots.
type globalClock struct {
	value atomic.Uint64
}

// sample reads the current clock value with Acquire ordering: the start of
// a transaction's snapshot.
func (c *globalClock) sample() uint64 {
	return c.value.Load()
}

// increment bumps the clock by one and returns the new value — the write
// version stamped on every stripe a committing transaction touches. This
// fetch-and-add is the linearization point for write transactions.
func (c *globalClock) increment() uint64 {
	return c.value.Add(1)
}
