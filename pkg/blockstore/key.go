package blockstore

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const (
	// KeySize is the width in bytes of a block key
	KeySize = 16

	// KeySizeHex is the length of the hex representation of a key
	KeySizeHex = 32
)

// Key names one block, or the root block of a blob.
//
// A key locates a block: it is fixed when the block is created and is
// never re-derived from the block's payload, so rewriting a block does
// not change its key.
type Key [KeySize]byte

// NewKey creates a new key from data
func NewKey(data []byte) (Key, error) {
	if len(data) != KeySize {
		return Key{}, &BadKeySize{Key: data}
	}
	var k Key
	copy(k[:], data)
	return k, nil
}

// MustNewKey creates a new key from data but panics if there is an error
func MustNewKey(data []byte) Key {
	k, e := NewKey(data)
	if e != nil {
		panic(e.Error())
	}
	return k
}

// KeyFromString parses the hex representation of a key
func KeyFromString(s string) (Key, error) {
	if len(s) != KeySizeHex {
		return Key{}, &BadKeySize{Key: []byte(s)}
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("key is not valid hex: %v", err)
	}
	return NewKey(data)
}

// NewRandomKey draws a fresh random key
func NewRandomKey() Key {
	return Key(uuid.New())
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// BadKeySize is an error that's returned when the key to create has an invalid size.
type BadKeySize struct {
	Key []byte
}

func (b *BadKeySize) Error() string {
	return fmt.Sprintf("%x has invalid size of %d, expected %d", b.Key, len(b.Key), KeySize)
}
