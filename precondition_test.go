package tl2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A misaligned address is a precondition violation and must fail loudly:
// Load(3) with a stripe width of 8 should panic rather than retry.
func TestLoadRejectsMisalignedAddress(t *testing.T) {
	s, err := NewSTM(8, 8)
	require.NoError(t, err)

	require.Panics(t, func() {
		RunWrite(s, func(tx *WriteTxn) Result[struct{}] {
			tx.Load(3)
			return Ok(struct{}{})
		})
	})
}

func TestStoreRejectsOutOfRangeAddress(t *testing.T) {
	s, err := NewSTM(8, 8)
	require.NoError(t, err)

	require.Panics(t, func() {
		RunWrite(s, func(tx *WriteTxn) Result[struct{}] {
			tx.Store(8, stripe(1))
			return Ok(struct{}{})
		})
	})
}

func TestStoreRejectsWrongWidthValue(t *testing.T) {
	s, err := NewSTM(16, 8)
	require.NoError(t, err)

	require.Panics(t, func() {
		RunWrite(s, func(tx *WriteTxn) Result[struct{}] {
			tx.Store(0, []byte{1, 2, 3})
			return Ok(struct{}{})
		})
	})
}

func TestReadTxnLoadRejectsMisalignedAddress(t *testing.T) {
	s, err := NewSTM(8, 8)
	require.NoError(t, err)

	require.Panics(t, func() {
		RunRead(s, func(tx *ReadTxn) Result[struct{}] {
			tx.Load(1)
			return Ok(struct{}{})
		})
	})
}
