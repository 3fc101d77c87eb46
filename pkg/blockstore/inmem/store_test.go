package inmem

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultfs/vaultfs/pkg/blockstore/status"
)

const testBlockSize = 64

func TestInmemRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0xab}, testBlockSize)
	require.NoError(t, s.Store(ctx, key, data))

	got, err := s.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, data, got)

	// mutating the returned buffer must not reach the store
	got[0] = 0xff
	again, err := s.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, byte(0xab), again[0])
}

func TestInmemAbsence(t *testing.T) {
	ctx := context.Background()
	s := New(testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)

	has, err := s.Has(ctx, key)
	require.NoError(t, err)
	require.False(t, has)

	_, err = s.Load(ctx, key)
	require.ErrorIs(t, err, status.ErrNotExists)

	// removing an absent key is a no-op
	require.NoError(t, s.Remove(ctx, key))
}

func TestInmemBlockSize(t *testing.T) {
	ctx := context.Background()
	s := New(testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)

	err = s.Store(ctx, key, make([]byte, testBlockSize-1))
	require.ErrorIs(t, err, status.ErrBlockSize)

	err = s.Store(ctx, key, make([]byte, testBlockSize+1))
	require.ErrorIs(t, err, status.ErrBlockSize)
}

func TestInmemRemove(t *testing.T) {
	ctx := context.Background()
	s := New(testBlockSize)

	key, err := s.CreateKey(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, key, make([]byte, testBlockSize)))
	require.Equal(t, 1, s.Len())

	require.NoError(t, s.Remove(ctx, key))
	require.Equal(t, 0, s.Len())

	_, err = s.Load(ctx, key)
	require.ErrorIs(t, err, status.ErrNotExists)
}
