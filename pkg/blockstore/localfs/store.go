// Copyright © 2026 VaultFS

package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/status"
)

// New creates a new local file system backed block store.
//
// Blocks are persisted one file per key, fanned out over directories
// named after the first two hex digits of the key.
func New(fs afero.Fs, blockSize uint32) *Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(".vaultfs", "blocks"))
	}
	return &Store{
		fs:        fs,
		blockSize: blockSize,
	}
}

// Store persists blocks as files on an afero file system
type Store struct {
	fs        afero.Fs
	blockSize uint32
}

var _ blockstore.Store = &Store{}

func (l *Store) path(key blockstore.Key) string {
	k := key.String()
	return filepath.Join(k[:2], k[2:])
}

// BlockSize reports the configured payload size
func (l *Store) BlockSize() uint32 {
	return l.blockSize
}

// Has tells whether a block exists under key
func (l *Store) Has(_ context.Context, key blockstore.Key) (bool, error) {
	fi, err := l.fs.Stat(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

// Load fetches the block's bytes, or status.ErrNotExists
func (l *Store) Load(ctx context.Context, key blockstore.Key) ([]byte, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotExists
	}
	data, err := afero.ReadFile(l.fs, l.path(key))
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	if uint32(len(data)) != l.blockSize {
		return nil, status.ErrBlockSize.Wrap(fmt.Errorf("block %v holds %d bytes on disk", key, len(data)))
	}
	return data, nil
}

// Store creates or overwrites the block at key
func (l *Store) Store(_ context.Context, key blockstore.Key, data []byte) error {
	if uint32(len(data)) != l.blockSize {
		return status.ErrBlockSize
	}
	pth := l.path(key)
	if err := l.fs.MkdirAll(filepath.Dir(pth), 0700); err != nil {
		return fmt.Errorf("ensuring directories for %q: %v", key, err)
	}
	target, err := l.fs.OpenFile(pth, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_SYNC, 0600)
	if err != nil {
		return fmt.Errorf("create record for %q: %v", key, err)
	}
	if _, err = target.Write(data); err != nil {
		_ = target.Close()
		return fmt.Errorf("write record for %q: %v", key, err)
	}
	return target.Close()
}

// Remove deletes the block. Removing an absent key is a no-op.
func (l *Store) Remove(_ context.Context, key blockstore.Key) error {
	if err := l.fs.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %q: %v", key, err)
	}
	return nil
}

// CreateKey allocates a fresh, unused key
func (l *Store) CreateKey(ctx context.Context) (blockstore.Key, error) {
	return blockstore.CreateRandomKey(ctx, l)
}

func (l *Store) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}
