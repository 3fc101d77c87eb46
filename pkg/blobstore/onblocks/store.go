// Package onblocks implements the blob store over a block store chain.
//
// A blob is one root block plus zero or more data blocks. The root
// block holds a small header (magic, format version, logical size);
// the key of data block i is derived from the root key and i with a
// keyed BLAKE2b hash, so the offset-to-block mapping is deterministic
// and identical after every reload of an unmodified blob.
package onblocks

import (
	"bytes"
	"context"
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
	"github.com/vaultfs/vaultfs/pkg/blobstore/status"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	blockstatus "github.com/vaultfs/vaultfs/pkg/blockstore/status"
	"github.com/vaultfs/vaultfs/pkg/errors"
)

const (
	headerSize    = 16
	formatVersion = 1
)

var headerMagic = [4]byte{'v', 'f', 'b', '1'}

// Option to configure the blob store
type Option func(*Store)

// Logger sets a logger for this store
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// New creates a blob store over blocks. The store owns the composed
// block store chain exclusively.
func New(blocks blockstore.Store, opts ...Option) (*Store, error) {
	if blocks.BlockSize() < headerSize {
		return nil, errors.New("block size is too small to hold a blob header")
	}
	s := &Store{
		blocks: blocks,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s, nil
}

// Store materializes blobs over fixed-size blocks
type Store struct {
	blocks blockstore.Store
	l      *zap.Logger
}

var _ blobstore.Store = &Store{}

// BlockSize reports the payload capacity of one constituent block
func (s *Store) BlockSize() uint32 {
	return s.blocks.BlockSize()
}

// Create allocates a fresh root block and initializes it as an empty blob
func (s *Store) Create(ctx context.Context) (blobstore.Blob, error) {
	key, err := s.blocks.CreateKey(ctx)
	if err != nil {
		return nil, err
	}
	b := &blob{blocks: s.blocks, key: key}
	if err := b.writeHeader(ctx); err != nil {
		return nil, err
	}
	s.l.Debug("created blob", zap.Stringer("key", key))
	return b, nil
}

// Load returns a handle over the blob rooted at key
func (s *Store) Load(ctx context.Context, key blockstore.Key) (blobstore.Blob, error) {
	raw, err := s.blocks.Load(ctx, key)
	if err != nil {
		if errors.Is(err, blockstatus.ErrNotExists) {
			return nil, status.ErrNotExists
		}
		return nil, err
	}
	if len(raw) < headerSize || !bytes.Equal(raw[:4], headerMagic[:]) || raw[4] != formatVersion {
		return nil, status.ErrBadHeader
	}
	return &blob{
		blocks: s.blocks,
		key:    key,
		size:   int64(binary.BigEndian.Uint64(raw[8:16])),
	}, nil
}

// Remove deletes all blocks constituting the blob, making its key
// permanently unresolvable.
func (s *Store) Remove(ctx context.Context, b blobstore.Blob) error {
	if err := b.Resize(ctx, 0); err != nil {
		return err
	}
	if err := s.blocks.Remove(ctx, b.Key()); err != nil {
		return err
	}
	s.l.Debug("removed blob", zap.Stringer("key", b.Key()))
	return nil
}
