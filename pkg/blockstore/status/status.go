// Package status declares error constants returned by
// implementations of the block store interface.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/blockstore and its
// implementations.
package status

import "github.com/vaultfs/vaultfs/pkg/errors"

var (
	// Sentinel errors returned by implementations of the interface defined by blockstore

	// ErrNotExists indicates that no block exists under the requested key
	ErrNotExists = errors.New("block doesn't exist")

	// ErrBlockSize indicates that a payload doesn't match the store's block size
	ErrBlockSize = errors.New("payload doesn't match the store block size")

	// ErrDecrypt indicates that a block could not be authenticated or decrypted
	// (wrong master key or corrupted ciphertext)
	ErrDecrypt = errors.New("block cannot be decrypted")

	// ErrStorageAPI indicates any other backend storage error
	ErrStorageAPI = errors.New("backend storage error")
)
