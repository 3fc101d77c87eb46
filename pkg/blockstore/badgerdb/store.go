// Package badgerdb provides a block store persisted in a badger
// key/value database. It is the durable single-host backend.
package badgerdb

import (
	"context"

	"github.com/dgraph-io/badger"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/status"
)

// New opens (or creates) a badger database at dir and returns a block
// store over it. Callers own the store and must Close it.
func New(dir string, blockSize uint32) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	return &Store{
		dir:       dir,
		db:        db,
		blockSize: blockSize,
	}, nil
}

// Store keeps one badger entry per block, keyed by the raw key bytes
type Store struct {
	dir       string
	db        *badger.DB
	blockSize uint32
}

var _ blockstore.Store = &Store{}

func badgerRewriteError(err error) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return status.ErrNotExists
	default:
		return status.ErrStorageAPI.Wrap(err)
	}
}

func (s *Store) String() string {
	return "badger@" + s.dir
}

// BlockSize reports the configured payload size
func (s *Store) BlockSize() uint32 {
	return s.blockSize
}

// Has tells whether a block exists under key
func (s *Store) Has(_ context.Context, key blockstore.Key) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key[:])
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, status.ErrStorageAPI.Wrap(err)
	}
	return found, nil
}

// Load fetches the block's bytes, or status.ErrNotExists
func (s *Store) Load(_ context.Context, key blockstore.Key) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key[:])
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, badgerRewriteError(err)
	}
	if uint32(len(data)) != s.blockSize {
		return nil, status.ErrBlockSize
	}
	return data, nil
}

// Store creates or overwrites the block at key
func (s *Store) Store(_ context.Context, key blockstore.Key, data []byte) error {
	if uint32(len(data)) != s.blockSize {
		return status.ErrBlockSize
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key[:], data)
	})
	return badgerRewriteError(err)
}

// Remove deletes the block. Removing an absent key is a no-op.
func (s *Store) Remove(_ context.Context, key blockstore.Key) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key[:])
	})
	return badgerRewriteError(err)
}

// CreateKey allocates a fresh, unused key
func (s *Store) CreateKey(ctx context.Context) (blockstore.Key, error) {
	return blockstore.CreateRandomKey(ctx, s)
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
