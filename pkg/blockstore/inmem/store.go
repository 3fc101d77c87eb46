// Package inmem provides a map-backed block store.
//
// It is the reference backend for tests and examples: losing the
// process loses the blocks.
package inmem

import (
	"context"
	"sync"

	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/status"
)

// New creates an in-memory block store holding blocks of blockSize bytes
func New(blockSize uint32) *Store {
	return &Store{
		blockSize: blockSize,
		blocks:    make(map[blockstore.Key][]byte),
	}
}

// Store keeps blocks in a mutex-guarded map. Buffers are copied on the
// way in and out so callers never alias store-owned memory.
type Store struct {
	blockSize uint32
	mu        sync.RWMutex
	blocks    map[blockstore.Key][]byte
}

var _ blockstore.Store = &Store{}

func (s *Store) String() string {
	return "inmem"
}

// BlockSize reports the configured payload size
func (s *Store) BlockSize() uint32 {
	return s.blockSize
}

// Has tells whether a block exists under key
func (s *Store) Has(_ context.Context, key blockstore.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blocks[key]
	return ok, nil
}

// Load fetches a copy of the block bytes
func (s *Store) Load(_ context.Context, key blockstore.Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blocks[key]
	if !ok {
		return nil, status.ErrNotExists
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Store creates or overwrites the block at key
func (s *Store) Store(_ context.Context, key blockstore.Key, data []byte) error {
	if uint32(len(data)) != s.blockSize {
		return status.ErrBlockSize
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[key] = buf
	return nil
}

// Remove deletes the block. Removing an absent key is a no-op.
func (s *Store) Remove(_ context.Context, key blockstore.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blocks, key)
	return nil
}

// CreateKey allocates a fresh, unused key
func (s *Store) CreateKey(ctx context.Context) (blockstore.Key, error) {
	return blockstore.CreateRandomKey(ctx, s)
}

// Len reports the number of blocks currently held. Tests use it to
// assert on block allocation and release.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blocks)
}
