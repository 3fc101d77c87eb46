package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherNameXChaCha20Poly1305 is the configuration name of the
// XChaCha20-Poly1305 cipher
const CipherNameXChaCha20Poly1305 = "xchacha20-poly1305"

// NewXChaCha20Poly1305 returns the XChaCha20-Poly1305 cipher. The
// extended nonce makes random nonces safe at any block write volume.
func NewXChaCha20Poly1305() Cipher {
	return xchacha{}
}

type xchacha struct{}

func (xchacha) Name() string {
	return CipherNameXChaCha20Poly1305
}

func (xchacha) Overhead() int {
	return chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
}

func (c xchacha) Encrypt(key EncryptionKey, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}
	nonce, err := randomNonce(aead.NonceSize())
	if err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c xchacha) Decrypt(key EncryptionKey, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < c.Overhead() {
		return nil, fmt.Errorf("ciphertext of %d bytes is shorter than the cipher overhead", len(ciphertext))
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, sealed, nil)
}
