package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
	"github.com/vaultfs/vaultfs/pkg/blobstore/onblocks"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/inmem"
	blockstatus "github.com/vaultfs/vaultfs/pkg/blockstore/status"
	"github.com/vaultfs/vaultfs/pkg/crypto"
	"github.com/vaultfs/vaultfs/pkg/device/status"
	"github.com/vaultfs/vaultfs/pkg/fsblob"
)

// fakeConfig implements the Config collaborator and counts Save calls
type fakeConfig struct {
	cipher string
	key    crypto.EncryptionKey
	root   *blockstore.Key
	saves  int
}

func newFakeConfig(t *testing.T) *fakeConfig {
	key, err := crypto.NewRandomEncryptionKey()
	require.NoError(t, err)
	return &fakeConfig{cipher: crypto.CipherNameAESGCM, key: key}
}

func (c *fakeConfig) CipherName() string                   { return c.cipher }
func (c *fakeConfig) EncryptionKey() crypto.EncryptionKey  { return c.key }
func (c *fakeConfig) SetRootBlob(k blockstore.Key)         { c.root = &k }
func (c *fakeConfig) Save() error                          { c.saves++; return nil }
func (c *fakeConfig) RootBlob() (blockstore.Key, bool) {
	if c.root == nil {
		return blockstore.Key{}, false
	}
	return *c.root, true
}

func plainStack(t *testing.T) (blobstore.Store, *inmem.Store) {
	backend := inmem.New(64)
	blobs, err := onblocks.New(backend)
	require.NoError(t, err)
	return blobs, backend
}

func plainDevice(t *testing.T) (*Device, *fakeConfig) {
	blobs, _ := plainStack(t)
	cfg := newFakeConfig(t)
	dev, err := NewWithBlobStore(context.Background(), cfg, blobs)
	require.NoError(t, err)
	return dev, cfg
}

func TestDeviceLazyRootCreation(t *testing.T) {
	ctx := context.Background()
	blobs, backend := plainStack(t)
	cfg := newFakeConfig(t)

	dev, err := NewWithBlobStore(ctx, cfg, blobs)
	require.NoError(t, err)

	// exactly one blob was created: the root directory (one header
	// block plus one data block holding the empty encoding)
	require.Equal(t, 2, backend.Len())
	require.Equal(t, 1, cfg.saves)
	require.NotNil(t, cfg.root)
	require.Equal(t, *cfg.root, dev.RootKey())

	// the new root decodes as an empty directory
	root, err := dev.Resolve(ctx, "/")
	require.NoError(t, err)
	entries, err := root.(*Dir).Entries(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDeviceExistingRoot(t *testing.T) {
	ctx := context.Background()
	blobs, _ := plainStack(t)
	cfg := newFakeConfig(t)

	first, err := NewWithBlobStore(ctx, cfg, blobs)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.saves)

	// a second device over the same config reuses the root, no save
	second, err := NewWithBlobStore(ctx, cfg, blobs)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.saves)
	require.Equal(t, first.RootKey(), second.RootKey())
}

func TestDeviceRemoveBlobAbsent(t *testing.T) {
	ctx := context.Background()
	dev, _ := plainDevice(t)

	// removing an absent blob is a logged no-op
	require.NoError(t, dev.RemoveBlob(ctx, blockstore.NewRandomKey()))
}

func TestDeviceBlobPassThrough(t *testing.T) {
	ctx := context.Background()
	dev, _ := plainDevice(t)

	blob, err := dev.CreateBlob(ctx)
	require.NoError(t, err)
	_, err = blob.WriteAt(ctx, []byte("content"), 0)
	require.NoError(t, err)

	loaded, err := dev.LoadBlob(ctx, blob.Key())
	require.NoError(t, err)
	require.Equal(t, int64(7), loaded.Size())

	require.NoError(t, dev.RemoveBlob(ctx, blob.Key()))
	_, err = dev.LoadBlob(ctx, blob.Key())
	require.Error(t, err)
}

func TestDeviceComposedStack(t *testing.T) {
	ctx := context.Background()
	backend := inmem.New(256)
	cfg := newFakeConfig(t)

	dev, err := New(ctx, cfg, backend, CacheSize(16*256))
	require.NoError(t, err)

	root, err := dev.Resolve(ctx, "/")
	require.NoError(t, err)
	dir, err := root.(*Dir).CreateChildDir(ctx, "docs")
	require.NoError(t, err)
	file, err := dir.CreateChildFile(ctx, "readme.txt")
	require.NoError(t, err)

	blob, err := file.Open(ctx)
	require.NoError(t, err)
	content := []byte("hello through the whole chain")
	_, err = blob.WriteAt(ctx, content, 0)
	require.NoError(t, err)

	// a second device over the same backend and config reads it back
	dev2, err := New(ctx, cfg, backend)
	require.NoError(t, err)
	n, err := dev2.Resolve(ctx, "/docs/readme.txt")
	require.NoError(t, err)
	got, err := blobstore.ReadAll(ctx, mustOpen(t, ctx, n))
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestDeviceWrongMasterKey(t *testing.T) {
	ctx := context.Background()
	backend := inmem.New(256)
	cfg := newFakeConfig(t)

	dev, err := New(ctx, cfg, backend)
	require.NoError(t, err)
	_, err = dev.Resolve(ctx, "/")
	require.NoError(t, err)

	// same backend, different master key: decryption fails, and the
	// failure stays distinguishable from plain absence
	other := newFakeConfig(t)
	other.root = cfg.root
	dev2, err := New(ctx, other, backend)
	require.NoError(t, err)

	_, err = dev2.Resolve(ctx, "/anything")
	require.ErrorIs(t, err, blockstatus.ErrDecrypt)
	require.NotErrorIs(t, err, status.ErrPathNotFound)
}

func mustOpen(t *testing.T, ctx context.Context, n Node) blobstore.Blob {
	file, ok := n.(*File)
	require.True(t, ok)
	blob, err := file.Open(ctx)
	require.NoError(t, err)
	return blob
}

func TestDeviceEntryTypes(t *testing.T) {
	dev, _ := plainDevice(t)
	ctx := context.Background()

	root, err := dev.Resolve(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, fsblob.EntryTypeDir, root.Type())

	d := root.(*Dir)
	f, err := d.CreateChildFile(ctx, "f")
	require.NoError(t, err)
	require.Equal(t, fsblob.EntryTypeFile, f.Type())

	s, err := d.CreateChildSymlink(ctx, "s", "/f")
	require.NoError(t, err)
	require.Equal(t, fsblob.EntryTypeSymlink, s.Type())

	target, err := s.Target(ctx)
	require.NoError(t, err)
	require.Equal(t, "/f", target)
}
