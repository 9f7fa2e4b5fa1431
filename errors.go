// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for precondition violations. These are the only errors the
// package surfaces deliberately; everything else (lock conflicts, stale
// reads) is swallowed and turned into a retry by the STM facade.
const (
	ErrCodeInvalidStripeWidth errors.ErrorCode = "TL2_INVALID_STRIPE_WIDTH"
	ErrCodeInvalidMemorySize  errors.ErrorCode = "TL2_INVALID_MEMORY_SIZE"
	ErrCodeMisalignedAddress  errors.ErrorCode = "TL2_MISALIGNED_ADDRESS"
	ErrCodeOutOfRange         errors.ErrorCode = "TL2_OUT_OF_RANGE"
	ErrCodeInvalidStripeValue errors.ErrorCode = "TL2_INVALID_STRIPE_VALUE"
)

const (
	msgInvalidStripeWidth = "stripe width must be a power of two"
	msgInvalidMemorySize  = "memory size must be a positive multiple of the stripe width"
	msgMisalignedAddress  = "address is not stripe-aligned"
	msgOutOfRange         = "address is out of range"
	msgInvalidStripeValue = "stripe value does not match the configured stripe width"
)

// PreconditionError reports a programming error: a malformed construction
// parameter or an out-of-range/misaligned address. These are never retried;
// the caller is expected to fix the call site.
type PreconditionError = errors.Error

// NewErrInvalidStripeWidth builds a PreconditionError for a non-power-of-two
// stripe width.
func NewErrInvalidStripeWidth(width int) error {
	return errors.NewWithContext(ErrCodeInvalidStripeWidth, msgInvalidStripeWidth, map[string]interface{}{
		"provided_width": width,
	})
}

// NewErrInvalidMemorySize builds a PreconditionError for a memory size that
// is not a positive multiple of the stripe width.
func NewErrInvalidMemorySize(size, width int) error {
	return errors.NewWithContext(ErrCodeInvalidMemorySize, msgInvalidMemorySize, map[string]interface{}{
		"provided_size":  size,
		"provided_width": width,
	})
}

// NewErrMisalignedAddress builds a PreconditionError for an address that is
// not a multiple of the stripe width.
func NewErrMisalignedAddress(addr, width int) error {
	return errors.NewWithContext(ErrCodeMisalignedAddress, msgMisalignedAddress, map[string]interface{}{
		"addr":  addr,
		"width": width,
	})
}

// NewErrOutOfRange builds a PreconditionError for an address at or beyond
// the memory size.
func NewErrOutOfRange(addr, size int) error {
	return errors.NewWithContext(ErrCodeOutOfRange, msgOutOfRange, map[string]interface{}{
		"addr": addr,
		"size": size,
	})
}

// NewErrInvalidStripeValue builds a PreconditionError for a stripe whose
// length does not equal the configured stripe width.
func NewErrInvalidStripeValue(got, want int) error {
	return errors.NewWithField(ErrCodeInvalidStripeValue, fmt.Sprintf("%s (got %d bytes, want %d)", msgInvalidStripeValue, got, want), "want_width", want)
}

// IsPrecondition reports whether err is a precondition violation raised by
// this package.
func IsPrecondition(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if !goerrors.As(err, &coder) {
		return false
	}
	switch coder.ErrorCode() {
	case ErrCodeInvalidStripeWidth, ErrCodeInvalidMemorySize, ErrCodeMisalignedAddress, ErrCodeOutOfRange, ErrCodeInvalidStripeValue:
		return true
	default:
		return false
	}
}
