// Package status declares error constants returned by
// implementations of the blob store interface.
package status

import "github.com/vaultfs/vaultfs/pkg/errors"

var (
	// ErrNotExists indicates that no blob is rooted at the requested key
	ErrNotExists = errors.New("blob doesn't exist")

	// ErrBadHeader indicates that the root block does not carry a valid blob header
	ErrBadHeader = errors.New("block is not a valid blob root")

	// ErrCorrupted indicates that a constituent block of the blob is missing or unreadable
	ErrCorrupted = errors.New("blob is corrupted")

	// ErrInvalidRange indicates a negative offset or size
	ErrInvalidRange = errors.New("invalid blob offset or size")
)
