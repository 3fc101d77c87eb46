// Package blockstore defines key-addressed storage of fixed-size
// opaque binary blocks.
//
// The Store interface is implemented both by backends (inmem, localfs,
// badgerdb) and by wrapping layers (encrypted, caching). Wrappers own
// their inner store exclusively, so a composition such as
//
//	caching.New(encrypted.New(backend, cipher, key))
//
// behaves like a single store with transparent encryption and caching.
package blockstore

import "context"

// Store is the capability set shared by backends and wrapping layers.
type Store interface {
	String() string

	// BlockSize reports the usable payload size of one block at this
	// layer. Wrappers that add per-block overhead (encryption) report
	// a smaller size than their inner store.
	BlockSize() uint32

	// Has tells whether a block exists under key.
	Has(ctx context.Context, key Key) (bool, error)

	// Load fetches the block's current bytes. A missing key yields
	// status.ErrNotExists, never a panic or a generic failure.
	Load(ctx context.Context, key Key) ([]byte, error)

	// Store creates or overwrites the block at key. The payload must
	// be exactly BlockSize() bytes: padding short payloads is the
	// calling layer's job, never the store's.
	Store(ctx context.Context, key Key, data []byte) error

	// Remove deletes the block. Removing an absent key is a no-op.
	Remove(ctx context.Context, key Key) error

	// CreateKey allocates a fresh key not currently in use.
	CreateKey(ctx context.Context) (Key, error)
}

// CreateRandomKey draws random keys until one is unused in s.
// Backends use it to implement CreateKey; with 16 random bytes per key
// a retry is essentially unheard of.
func CreateRandomKey(ctx context.Context, s Store) (Key, error) {
	for {
		k := NewRandomKey()
		has, err := s.Has(ctx, k)
		if err != nil {
			return Key{}, err
		}
		if !has {
			return k, nil
		}
	}
}
