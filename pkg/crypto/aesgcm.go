package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// CipherNameAESGCM is the configuration name of the AES-256-GCM cipher
const CipherNameAESGCM = "aes-256-gcm"

const gcmNonceSize = 12

// NewAESGCM returns the AES-256-GCM cipher, the default choice
func NewAESGCM() Cipher {
	return aesgcm{}
}

type aesgcm struct{}

func (aesgcm) Name() string {
	return CipherNameAESGCM
}

func (aesgcm) Overhead() int {
	return gcmNonceSize + 16
}

func (aesgcm) aead(key EncryptionKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (c aesgcm) Encrypt(key EncryptionKey, plaintext []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randomNonce(aead.NonceSize())
	if err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c aesgcm) Decrypt(key EncryptionKey, ciphertext []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < c.Overhead() {
		return nil, fmt.Errorf("ciphertext of %d bytes is shorter than the cipher overhead", len(ciphertext))
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, sealed, nil)
}
