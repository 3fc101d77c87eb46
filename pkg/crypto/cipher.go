// Package crypto defines the symmetric cipher capability used by the
// encrypting block store, plus master key handling.
//
// Ciphers are stateless: every Encrypt call draws a fresh random nonce
// and the result carries everything needed to decrypt it with the same
// master key. No chaining state survives between calls.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// EncryptionKeySize is the width in bytes of a master encryption key
const EncryptionKeySize = 32

// EncryptionKey is the fixed-size master secret handed to the
// encrypting block store.
type EncryptionKey [EncryptionKeySize]byte

// NewRandomEncryptionKey draws a fresh master key from the OS entropy source
func NewRandomEncryptionKey() (EncryptionKey, error) {
	var k EncryptionKey
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return EncryptionKey{}, err
	}
	return k, nil
}

// EncryptionKeyFromString parses the hex representation of a master key
func EncryptionKeyFromString(s string) (EncryptionKey, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return EncryptionKey{}, fmt.Errorf("encryption key is not valid hex: %v", err)
	}
	if len(data) != EncryptionKeySize {
		return EncryptionKey{}, fmt.Errorf("encryption key has invalid size of %d, expected %d", len(data), EncryptionKeySize)
	}
	var k EncryptionKey
	copy(k[:], data)
	return k, nil
}

// Hex serializes the key for the configuration record. This is the only
// sanctioned way to get the secret out of the type.
func (k EncryptionKey) Hex() string {
	return hex.EncodeToString(k[:])
}

// String redacts the secret so the key never leaks through logging
func (k EncryptionKey) String() string {
	return "<encryption key redacted>"
}

// Cipher encrypts and decrypts fixed-size buffers under a master key.
type Cipher interface {
	// Name identifies the cipher in configuration records
	Name() string

	// Overhead is the number of bytes (nonce plus authentication tag)
	// a ciphertext carries on top of its plaintext
	Overhead() int

	// Encrypt seals plaintext; the result is len(plaintext)+Overhead() bytes
	Encrypt(key EncryptionKey, plaintext []byte) ([]byte, error)

	// Decrypt opens ciphertext, failing when the ciphertext cannot be
	// authenticated (wrong key, corrupted bytes)
	Decrypt(key EncryptionKey, ciphertext []byte) ([]byte, error)
}

// FromName resolves a cipher by its configuration name
func FromName(name string) (Cipher, error) {
	switch name {
	case CipherNameAESGCM:
		return NewAESGCM(), nil
	case CipherNameXChaCha20Poly1305:
		return NewXChaCha20Poly1305(), nil
	default:
		return nil, fmt.Errorf("unknown cipher %q", name)
	}
}

func randomNonce(size int) ([]byte, error) {
	nonce := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}
