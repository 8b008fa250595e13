package store

import (
	"testing"
)

// Compile-time checks that the interface is importable and usable.
func TestMirrorStoreInterfaceExists(t *testing.T) {
	// This test simply validates that the MirrorStore interface compiles
	// and the sentinel errors are accessible.
	_ = ErrUserNotFound
	_ = ErrWalletNotFound
	_ = ErrSessionNotFound
	_ = ErrAddressConflict
	_ = ErrInvalidArgument
	_ = SyncWalletParams{}
	_ = RecordTransferParams{}

	// Ensure the interface is non-nil type.
	var _ MirrorStore
}
