package crypto

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/scrypt"
)

// SaltSize is the width in bytes of a KDF salt
const SaltSize = 32

// Scrypt parameters are fixed: changing them would render existing
// configuration records underivable.
const (
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// NewRandomSalt draws a fresh KDF salt
func NewRandomSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveEncryptionKey derives a master key from a passphrase and a
// salt using scrypt. The derivation is deterministic, so the key never
// needs to be persisted when a passphrase is in use.
func DeriveEncryptionKey(passphrase string, salt []byte) (EncryptionKey, error) {
	data, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, EncryptionKeySize)
	if err != nil {
		return EncryptionKey{}, err
	}
	var k EncryptionKey
	copy(k[:], data)
	return k, nil
}
