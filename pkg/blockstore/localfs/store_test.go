package localfs

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vaultfs/vaultfs/pkg/blockstore/status"
)

const testBlockSize = 128

func TestLocalfsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0x5a}, testBlockSize)
	require.NoError(t, s.Store(ctx, key, data))

	has, err := s.Has(ctx, key)
	require.NoError(t, err)
	require.True(t, has)

	got, err := s.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, data, got)

	// overwrite under the same key
	data2 := bytes.Repeat([]byte{0xa5}, testBlockSize)
	require.NoError(t, s.Store(ctx, key, data2))
	got, err = s.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, data2, got)
}

func TestLocalfsAbsence(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)

	_, err = s.Load(ctx, key)
	require.ErrorIs(t, err, status.ErrNotExists)

	require.NoError(t, s.Remove(ctx, key))
}

func TestLocalfsRemove(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, key, make([]byte, testBlockSize)))

	require.NoError(t, s.Remove(ctx, key))
	has, err := s.Has(ctx, key)
	require.NoError(t, err)
	require.False(t, has)
}

func TestLocalfsBlockSize(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, s.Store(ctx, key, make([]byte, 1)), status.ErrBlockSize)
}
