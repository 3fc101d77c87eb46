// Package encrypted wraps a block store with transparent symmetric
// encryption under a single master key.
//
// Each Store call encrypts the plaintext block into a ciphertext block
// of the inner store's size; each Load decrypts on the way out. The
// layer keeps no chaining state between calls and never exposes the
// master key.
package encrypted

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/status"
	"github.com/vaultfs/vaultfs/pkg/crypto"
)

// Option to configure the encrypting store
type Option func(*Store)

// Logger sets a logger for this store
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// New wraps inner with cipher under key. The wrapper owns inner
// exclusively.
func New(inner blockstore.Store, cipher crypto.Cipher, key crypto.EncryptionKey, opts ...Option) (*Store, error) {
	if uint32(cipher.Overhead()) >= inner.BlockSize() {
		return nil, fmt.Errorf("cipher %s overhead of %d bytes leaves no payload in %d byte blocks",
			cipher.Name(), cipher.Overhead(), inner.BlockSize())
	}
	s := &Store{
		inner:  inner,
		cipher: cipher,
		key:    key,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s, nil
}

// Store transforms plaintext blocks to ciphertext blocks and back
type Store struct {
	inner  blockstore.Store
	cipher crypto.Cipher
	key    crypto.EncryptionKey
	l      *zap.Logger
}

var _ blockstore.Store = &Store{}

func (s *Store) String() string {
	return fmt.Sprintf("encrypted[%s](%s)", s.cipher.Name(), s.inner.String())
}

// BlockSize reports the plaintext payload size: the inner block size
// minus the cipher overhead.
func (s *Store) BlockSize() uint32 {
	return s.inner.BlockSize() - uint32(s.cipher.Overhead())
}

// Has delegates to the inner store
func (s *Store) Has(ctx context.Context, key blockstore.Key) (bool, error) {
	return s.inner.Has(ctx, key)
}

// Load fetches and decrypts the block. A ciphertext that cannot be
// authenticated surfaces status.ErrDecrypt, never garbage plaintext.
func (s *Store) Load(ctx context.Context, key blockstore.Key) ([]byte, error) {
	ciphertext, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	plaintext, err := s.cipher.Decrypt(s.key, ciphertext)
	if err != nil {
		s.l.Debug("block failed decryption", zap.Stringer("key", key))
		return nil, status.ErrDecrypt.Wrap(err)
	}
	return plaintext, nil
}

// Store encrypts the plaintext block and delegates
func (s *Store) Store(ctx context.Context, key blockstore.Key, data []byte) error {
	if uint32(len(data)) != s.BlockSize() {
		return status.ErrBlockSize
	}
	ciphertext, err := s.cipher.Encrypt(s.key, data)
	if err != nil {
		return err
	}
	return s.inner.Store(ctx, key, ciphertext)
}

// Remove delegates to the inner store
func (s *Store) Remove(ctx context.Context, key blockstore.Key) error {
	return s.inner.Remove(ctx, key)
}

// CreateKey delegates to the inner store
func (s *Store) CreateKey(ctx context.Context) (blockstore.Key, error) {
	return s.inner.CreateKey(ctx)
}
