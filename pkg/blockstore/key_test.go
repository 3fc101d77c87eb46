package blockstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyFromString(t *testing.T) {
	k := NewRandomKey()

	parsed, err := KeyFromString(k.String())
	require.NoError(t, err)
	require.Equal(t, k, parsed)

	_, err = KeyFromString("abcd")
	require.Error(t, err)

	_, err = KeyFromString("zz000000000000000000000000000000")
	require.Error(t, err)
}

func TestNewKey(t *testing.T) {
	data := bytes.Repeat([]byte{0x42}, KeySize)
	k, err := NewKey(data)
	require.NoError(t, err)
	require.Equal(t, data, k[:])

	_, err = NewKey(data[:KeySize-1])
	require.Error(t, err)
	var bad *BadKeySize
	require.ErrorAs(t, err, &bad)

	_, err = NewKey(append(data, 0x42))
	require.Error(t, err)
}

func TestNewRandomKey(t *testing.T) {
	seen := make(map[Key]struct{})
	for i := 0; i < 1000; i++ {
		k := NewRandomKey()
		_, dup := seen[k]
		require.False(t, dup)
		seen[k] = struct{}{}
	}
}
