// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

import "math/bits"

// Memory owns the flat byte buffer, the per-stripe lock array, and the
// global version clock. It is the only component that ever touches the
// backing buffer directly; every other access goes through a transaction.
type Memory struct {
	buf    []byte
	locks  []versionedLock
	clock  globalClock
	width  int
	shift  uint
	size   int
	stats  *Stats
	logger Logger
}

// NewMemory constructs a zero-initialized memory region of sizeBytes split
// into stripes of stripeWidth bytes. stripeWidth must be a power of two and
// sizeBytes must be a positive multiple of it.
func NewMemory(sizeBytes, stripeWidth int, opts ...Option) (*Memory, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if stripeWidth <= 0 || stripeWidth&(stripeWidth-1) != 0 {
		cfg.logger.Error("invalid stripe width", "width", stripeWidth)
		return nil, NewErrInvalidStripeWidth(stripeWidth)
	}
	if sizeBytes <= 0 || sizeBytes%stripeWidth != 0 {
		cfg.logger.Error("invalid memory size", "size", sizeBytes, "width", stripeWidth)
		return nil, NewErrInvalidMemorySize(sizeBytes, stripeWidth)
	}

	shift := uint(bits.TrailingZeros(uint(stripeWidth)))

	m := &Memory{
		buf:    make([]byte, sizeBytes),
		locks:  make([]versionedLock, sizeBytes>>shift),
		width:  stripeWidth,
		shift:  shift,
		size:   sizeBytes,
		stats:  cfg.stats,
		logger: cfg.logger,
	}
	return m, nil
}

// Size returns the total memory size in bytes.
func (m *Memory) Size() int { return m.size }

// StripeWidth returns the configured stripe width in bytes.
func (m *Memory) StripeWidth() int { return m.width }

// stripeIndex maps a byte address to its stripe index.
func (m *Memory) stripeIndex(addr int) int { return addr >> m.shift }

// checkAddr validates that addr is stripe-aligned and within range. It
// panics on a precondition violation: an invalid address is a programming
// error in the caller, not a transient condition the transaction can retry
// its way out of.
func (m *Memory) checkAddr(addr int) {
	if addr < 0 || addr%m.width != 0 {
		m.logger.Error("misaligned address", "addr", addr, "width", m.width)
		panic(NewErrMisalignedAddress(addr, m.width))
	}
	if addr >= m.size {
		m.logger.Error("out of range address", "addr", addr, "size", m.size)
		panic(NewErrOutOfRange(addr, m.size))
	}
}

// lockAt returns the versioned lock for the stripe at addr. Callers must
// have already validated addr via checkAddr.
func (m *Memory) lockAt(addr int) *versionedLock {
	return &m.locks[m.stripeIndex(addr)]
}

// readStripe copies the stripe at addr out of the backing buffer into a
// freshly allocated slice.
func (m *Memory) readStripe(addr int) []byte {
	out := make([]byte, m.width)
	copy(out, m.buf[addr:addr+m.width])
	return out
}

// writeStripe copies val into the backing buffer at addr. val must be
// exactly m.width bytes; callers validate this before calling.
func (m *Memory) writeStripe(addr int, val []byte) {
	copy(m.buf[addr:addr+m.width], val)
}
