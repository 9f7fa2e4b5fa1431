// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

// ReadTxn is the read-only sibling of WriteTxn: it samples the clock once
// and validates every load against that snapshot, but never touches a
// lock and never builds a read or write set. It commits trivially — there
// is nothing to publish.
type ReadTxn struct {
	mem *Memory

	rv      uint64
	aborted bool
}

func newReadTxn(mem *Memory) *ReadTxn {
	return &ReadTxn{
		mem: mem,
		rv:  mem.clock.sample(),
	}
}

// Load returns the stripe at addr as observed by this transaction's
// snapshot, or (nil, false) if the transaction has aborted. Panics on a
// misaligned or out-of-range address.
func (tx *ReadTxn) Load(addr int) ([]byte, bool) {
	tx.mem.checkAddr(addr)

	if tx.aborted {
		return nil, false
	}

	lock := tx.mem.lockAt(addr)
	if !lock.testUnmodified(tx.rv) {
		tx.aborted = true
		return nil, false
	}

	val := tx.mem.readStripe(addr)

	if !lock.testUnmodified(tx.rv) {
		tx.aborted = true
		return nil, false
	}

	return val, true
}
