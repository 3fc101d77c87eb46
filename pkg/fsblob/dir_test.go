package fsblob

import (
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
	"github.com/vaultfs/vaultfs/pkg/blobstore/onblocks"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/inmem"
)

func testBlobStore(t *testing.T) blobstore.Store {
	s, err := onblocks.New(inmem.New(64))
	require.NoError(t, err)
	return s
}

func newBlob(t *testing.T, s blobstore.Store) blobstore.Blob {
	b, err := s.Create(context.Background())
	require.NoError(t, err)
	return b
}

func TestDirInitializeEmpty(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)
	b := newBlob(t, s)

	d, err := InitializeDir(ctx, b)
	require.NoError(t, err)
	require.Equal(t, 0, d.Len())
	require.Equal(t, b.Key(), d.Key())

	// a fresh handle decodes the persisted empty directory
	reloaded, err := s.Load(ctx, b.Key())
	require.NoError(t, err)
	d2, err := NewDir(ctx, reloaded)
	require.NoError(t, err)
	require.Equal(t, 0, d2.Len())
}

func TestDirAddGetRemove(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)
	d, err := InitializeDir(ctx, newBlob(t, s))
	require.NoError(t, err)

	ka, kb := blockstore.NewRandomKey(), blockstore.NewRandomKey()
	require.NoError(t, d.AddChild("a", ka, EntryTypeFile))
	require.NoError(t, d.AddChild("b", kb, EntryTypeDir))

	e, err := d.GetChild("a")
	require.NoError(t, err)
	require.Equal(t, Entry{Name: "a", Type: EntryTypeFile, Key: ka}, e)

	_, err = d.GetChild("missing")
	require.ErrorIs(t, err, ErrNoSuchEntry)

	require.NoError(t, d.RemoveChild("a"))
	_, err = d.GetChild("a")
	require.ErrorIs(t, err, ErrNoSuchEntry)
	require.ErrorIs(t, d.RemoveChild("a"), ErrNoSuchEntry)

	e, err = d.GetChild("b")
	require.NoError(t, err)
	require.Equal(t, kb, e.Key)
}

func TestDirDuplicateNameOverwrites(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)
	d, err := InitializeDir(ctx, newBlob(t, s))
	require.NoError(t, err)

	k1, k2, kb := blockstore.NewRandomKey(), blockstore.NewRandomKey(), blockstore.NewRandomKey()
	require.NoError(t, d.AddChild("a", k1, EntryTypeFile))
	require.NoError(t, d.AddChild("b", kb, EntryTypeFile))
	require.NoError(t, d.AddChild("a", k2, EntryTypeSymlink))

	require.Equal(t, 2, d.Len())
	e, err := d.GetChild("a")
	require.NoError(t, err)
	require.Equal(t, k2, e.Key)
	require.Equal(t, EntryTypeSymlink, e.Type)

	// exactly one "a", still in first position
	entries := d.Entries()
	require.Equal(t, "a", entries[0].Name)
	require.Equal(t, "b", entries[1].Name)
}

func TestDirSaveReload(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)
	b := newBlob(t, s)
	d, err := InitializeDir(ctx, b)
	require.NoError(t, err)

	names := []string{"docs", "readme.txt", strings.Repeat("long-name-", 30), "z"}
	keys := make(map[string]blockstore.Key)
	for _, n := range names {
		k := blockstore.NewRandomKey()
		keys[n] = k
		require.NoError(t, d.AddChild(n, k, EntryTypeFile))
	}
	require.NoError(t, d.Save(ctx))

	reloaded, err := s.Load(ctx, b.Key())
	require.NoError(t, err)
	d2, err := NewDir(ctx, reloaded)
	require.NoError(t, err)

	require.Equal(t, len(names), d2.Len())
	for i, e := range d2.Entries() {
		require.Equal(t, names[i], e.Name) // insertion order preserved
		require.Equal(t, keys[e.Name], e.Key)
	}
}

func TestDirMutationsNeedExplicitSave(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)
	b := newBlob(t, s)
	d, err := InitializeDir(ctx, b)
	require.NoError(t, err)

	require.NoError(t, d.AddChild("pending", blockstore.NewRandomKey(), EntryTypeFile))

	// not saved: a parallel decode still sees the empty directory
	other, err := s.Load(ctx, b.Key())
	require.NoError(t, err)
	d2, err := NewDir(ctx, other)
	require.NoError(t, err)
	require.Equal(t, 0, d2.Len())

	require.NoError(t, d.Save(ctx))
	d3, err := NewDir(ctx, other)
	require.NoError(t, err)
	require.Equal(t, 1, d3.Len())
}

func TestDirRejectsBadEncoding(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)

	// an uninitialized (empty) blob is not a directory
	b := newBlob(t, s)
	_, err := NewDir(ctx, b)
	require.ErrorIs(t, err, ErrBadDirBlob)

	// neither is arbitrary content
	_, err = b.WriteAt(ctx, []byte{0x99, 0x01, 0x02}, 0)
	require.NoError(t, err)
	_, err = NewDir(ctx, b)
	require.ErrorIs(t, err, ErrBadDirBlob)

	// truncated entry
	b2 := newBlob(t, s)
	_, err = b2.WriteAt(ctx, []byte{dirFormatVersion, 5, 'a', 'b'}, 0)
	require.NoError(t, err)
	_, err = NewDir(ctx, b2)
	require.ErrorIs(t, err, ErrBadDirBlob)

	// a huge name length must fail cleanly, not overflow the bounds math
	b3 := newBlob(t, s)
	raw := []byte{dirFormatVersion}
	var huge [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(huge[:], ^uint64(0))
	raw = append(raw, huge[:n]...)
	raw = append(raw, make([]byte, 30)...)
	_, err = b3.WriteAt(ctx, raw, 0)
	require.NoError(t, err)
	_, err = NewDir(ctx, b3)
	require.ErrorIs(t, err, ErrBadDirBlob)
}

func TestDirRejectsBadEntries(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)
	d, err := InitializeDir(ctx, newBlob(t, s))
	require.NoError(t, err)

	require.ErrorIs(t, d.AddChild("", blockstore.NewRandomKey(), EntryTypeFile), ErrBadEntry)
	require.ErrorIs(t, d.AddChild("x", blockstore.NewRandomKey(), EntryType(0x7f)), ErrBadEntry)
}

func TestSymlinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testBlobStore(t)
	b := newBlob(t, s)

	const target = "/docs/readme.txt"
	require.NoError(t, InitializeSymlink(ctx, b, target))

	got, err := ReadSymlinkTarget(ctx, b)
	require.NoError(t, err)
	require.Equal(t, target, got)

	// not a symlink blob
	other := newBlob(t, s)
	_, err = ReadSymlinkTarget(ctx, other)
	require.ErrorIs(t, err, ErrBadSymlinkBlob)
}
