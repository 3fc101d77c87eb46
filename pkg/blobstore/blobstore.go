// Package blobstore presents blobs: arbitrarily sized, independently
// growable byte streams addressed by the key of their root block.
//
// The package defines the interfaces; pkg/blobstore/onblocks implements
// them over a composed block store chain.
package blobstore

import (
	"context"

	"github.com/vaultfs/vaultfs/pkg/blockstore"
)

// Store creates, loads and removes blobs.
type Store interface {
	// Create allocates a fresh empty blob and returns a handle naming it
	Create(ctx context.Context) (Blob, error)

	// Load returns a handle over the blob rooted at key, or
	// status.ErrNotExists if no such blob exists
	Load(ctx context.Context, key blockstore.Key) (Blob, error)

	// Remove deletes all blocks constituting the blob, root included
	Remove(ctx context.Context, blob Blob) error

	// BlockSize reports the payload capacity of one constituent block
	BlockSize() uint32
}

// Blob is a handle over one logical byte stream. A handle borrows the
// blob store for the duration of each operation and owns no store
// state of its own.
//
// Any constituent block failing to load fails the whole operation:
// partial blobs are never silently truncated.
type Blob interface {
	// Key names the blob's root block for the blob's whole lifetime
	Key() blockstore.Key

	// Size is the blob's current logical length in bytes
	Size() int64

	// ReadAt reads len(p) bytes at offset off. Reads crossing the end
	// of the blob return the available bytes and io.EOF.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// WriteAt writes len(p) bytes at offset off, growing the blob as
	// needed. The gap of a sparse write reads back as zeroes.
	WriteAt(ctx context.Context, p []byte, off int64) (int, error)

	// Resize grows (zero-filled) or shrinks the blob to size bytes,
	// allocating or freeing constituent blocks accordingly
	Resize(ctx context.Context, size int64) error
}

// ReadAll reads the blob's full content into memory
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	buf := make([]byte, b.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	_, err := b.ReadAt(ctx, buf, 0)
	return buf, err
}
