package onblocks

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/minio/blake2b-simd"

	"github.com/vaultfs/vaultfs/pkg/blobstore/status"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	blockstatus "github.com/vaultfs/vaultfs/pkg/blockstore/status"
	"github.com/vaultfs/vaultfs/pkg/errors"
)

// blob translates logical byte ranges into constituent block reads and
// writes. Invariant: bytes past the logical size inside the last data
// block are always zero, so growing a blob reads back zeroes instead
// of stale data.
type blob struct {
	blocks blockstore.Store
	key    blockstore.Key

	mu   sync.Mutex
	size int64
}

// Key names the blob's root block
func (b *blob) Key() blockstore.Key {
	return b.key
}

// Size is the blob's current logical length
func (b *blob) Size() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// dataKey derives the key of data block index from the root key.
// Keyed BLAKE2b keeps the derivation collision-resistant across blobs
// and stable across loads.
func (b *blob) dataKey(index int64) blockstore.Key {
	hasher, err := blake2b.New(&blake2b.Config{
		Size: blockstore.KeySize,
		Key:  b.key[:],
	})
	if err != nil {
		// New only fails when configuration is wrong
		panic(err)
	}
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(index))
	_, _ = hasher.Write(idx[:])
	return blockstore.MustNewKey(hasher.Sum(nil))
}

func (b *blob) writeHeader(ctx context.Context) error {
	buf := make([]byte, b.blocks.BlockSize())
	copy(buf, headerMagic[:])
	buf[4] = formatVersion
	binary.BigEndian.PutUint64(buf[8:16], uint64(b.size))
	return b.blocks.Store(ctx, b.key, buf)
}

func (b *blob) loadDataBlock(ctx context.Context, index int64) ([]byte, error) {
	data, err := b.blocks.Load(ctx, b.dataKey(index))
	if err != nil {
		if errors.Is(err, blockstatus.ErrNotExists) {
			return nil, status.ErrCorrupted.Wrap(fmt.Errorf("blob %v misses data block %d", b.key, index))
		}
		return nil, err
	}
	return data, nil
}

// ReadAt implements blobstore.Blob
func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if off < 0 {
		return 0, status.ErrInvalidRange
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}

	n := int64(len(p))
	short := false
	if off+n > b.size {
		n = b.size - off
		short = true
	}

	bs := int64(b.blocks.BlockSize())
	var read int64
	for read < n {
		pos := off + read
		data, err := b.loadDataBlock(ctx, pos/bs)
		if err != nil {
			return int(read), err
		}
		read += int64(copy(p[read:n], data[pos%bs:]))
	}
	if short {
		return int(n), io.EOF
	}
	return int(n), nil
}

// WriteAt implements blobstore.Blob
func (b *blob) WriteAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if off < 0 {
		return 0, status.ErrInvalidRange
	}
	if len(p) == 0 {
		return 0, nil
	}

	bs := int64(b.blocks.BlockSize())
	oldBlocks := numBlocks(b.size, bs)

	// a sparse write may leave whole blocks of gap behind it: allocate
	// them zero-filled so the gap reads back as zeroes
	for idx := oldBlocks; idx < off/bs; idx++ {
		if err := b.blocks.Store(ctx, b.dataKey(idx), make([]byte, bs)); err != nil {
			return 0, err
		}
	}

	written := 0
	for written < len(p) {
		pos := off + int64(written)
		idx, blockOff := pos/bs, pos%bs
		span := min(int64(len(p)-written), bs-blockOff)

		var buf []byte
		if blockOff == 0 && span == bs {
			buf = p[written : written+int(span)]
		} else {
			var err error
			if idx < oldBlocks {
				buf, err = b.loadDataBlock(ctx, idx)
				if err != nil {
					return written, err
				}
			} else {
				buf = make([]byte, bs)
			}
			copy(buf[blockOff:], p[written:written+int(span)])
		}
		if err := b.blocks.Store(ctx, b.dataKey(idx), buf); err != nil {
			return written, err
		}
		written += int(span)
	}

	if end := off + int64(len(p)); end > b.size {
		b.size = end
		if err := b.writeHeader(ctx); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Resize implements blobstore.Blob
func (b *blob) Resize(ctx context.Context, size int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if size < 0 {
		return status.ErrInvalidRange
	}
	if size == b.size {
		return nil
	}

	bs := int64(b.blocks.BlockSize())
	oldBlocks, newBlocks := numBlocks(b.size, bs), numBlocks(size, bs)

	switch {
	case size > b.size:
		// the old tail block already pads with zeroes; only whole new
		// blocks need allocating
		for idx := oldBlocks; idx < newBlocks; idx++ {
			if err := b.blocks.Store(ctx, b.dataKey(idx), make([]byte, bs)); err != nil {
				return err
			}
		}
	default:
		for idx := newBlocks; idx < oldBlocks; idx++ {
			if err := b.blocks.Remove(ctx, b.dataKey(idx)); err != nil {
				return err
			}
		}
		// re-zero the dropped tail of the kept last block, so a later
		// grow cannot resurrect stale bytes
		if tail := size % bs; tail != 0 {
			data, err := b.loadDataBlock(ctx, newBlocks-1)
			if err != nil {
				return err
			}
			for i := tail; i < bs; i++ {
				data[i] = 0
			}
			if err := b.blocks.Store(ctx, b.dataKey(newBlocks-1), data); err != nil {
				return err
			}
		}
	}

	b.size = size
	return b.writeHeader(ctx)
}

func numBlocks(size, blockSize int64) int64 {
	return (size + blockSize - 1) / blockSize
}
