// Package config loads or creates the filesystem configuration record.
//
// The record lives as a small yaml file next to (or inside) the store
// and pins everything a device needs to open the filesystem again:
// cipher name, master key material and the root blob key. With a
// passphrase, only the KDF salt is persisted and the master key is
// re-derived on every load, never written to disk.
package config

import (
	"encoding/hex"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/crypto"
	"github.com/vaultfs/vaultfs/pkg/errors"
)

// CurrentVersion is the record format version written by this release
const CurrentVersion = 1

const kdfScrypt = "scrypt"

var (
	// ErrBadConfig indicates an unreadable or inconsistent record
	ErrBadConfig = errors.New("invalid configuration record")

	// ErrPassphraseRequired indicates a KDF-protected record opened without a passphrase
	ErrPassphraseRequired = errors.New("configuration requires a passphrase")

	// ErrWrongVersion indicates a record written by an incompatible release
	ErrWrongVersion = errors.New("unsupported configuration version")
)

// record is the serialized form.
//
// An empty rootblob means the root directory has not been created yet.
type record struct {
	Version       int    `json:"version" yaml:"version"`
	Cipher        string `json:"cipher" yaml:"cipher"`
	EncryptionKey string `json:"encryptionkey,omitempty" yaml:"encryptionkey,omitempty"`
	KDF           string `json:"kdf,omitempty" yaml:"kdf,omitempty"`
	Salt          string `json:"salt,omitempty" yaml:"salt,omitempty"`
	RootBlob      string `json:"rootblob" yaml:"rootblob"`
}

// Config is a loaded configuration record bound to its file. It
// implements the device's Config collaborator.
type Config struct {
	fs   afero.Fs
	path string
	rec  record
	key  crypto.EncryptionKey
	root *blockstore.Key
}

type settings struct {
	cipher     string
	passphrase string
}

// Option to load or create a configuration
type Option func(*settings)

// WithCipher selects the cipher recorded on creation
func WithCipher(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.cipher = name
		}
	}
}

// WithPassphrase protects the master key behind a passphrase. On
// creation the key is derived and only the salt is persisted; on load
// the same derivation reproduces the key.
func WithPassphrase(passphrase string) Option {
	return func(s *settings) {
		s.passphrase = passphrase
	}
}

// LoadOrCreate reads the record at path, or creates and persists a
// fresh one when none exists yet.
func LoadOrCreate(fs afero.Fs, path string, opts ...Option) (*Config, error) {
	s := &settings{cipher: crypto.CipherNameAESGCM}
	for _, apply := range opts {
		apply(s)
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return load(fs, path, s)
	}
	return create(fs, path, s)
}

func load(fs afero.Fs, path string, s *settings) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, ErrBadConfig.Wrap(err)
	}
	if rec.Version != CurrentVersion {
		return nil, ErrWrongVersion
	}
	if _, err := crypto.FromName(rec.Cipher); err != nil {
		return nil, ErrBadConfig.Wrap(err)
	}

	c := &Config{fs: fs, path: path, rec: rec}
	switch {
	case rec.EncryptionKey != "":
		key, err := crypto.EncryptionKeyFromString(rec.EncryptionKey)
		if err != nil {
			return nil, ErrBadConfig.Wrap(err)
		}
		c.key = key
	case rec.KDF == kdfScrypt:
		if s.passphrase == "" {
			return nil, ErrPassphraseRequired
		}
		salt, err := hex.DecodeString(rec.Salt)
		if err != nil || len(salt) != crypto.SaltSize {
			return nil, ErrBadConfig
		}
		key, err := crypto.DeriveEncryptionKey(s.passphrase, salt)
		if err != nil {
			return nil, err
		}
		c.key = key
	default:
		return nil, ErrBadConfig
	}

	if rec.RootBlob != "" {
		root, err := blockstore.KeyFromString(rec.RootBlob)
		if err != nil {
			return nil, ErrBadConfig.Wrap(err)
		}
		c.root = &root
	}
	return c, nil
}

func create(fs afero.Fs, path string, s *settings) (*Config, error) {
	c := &Config{
		fs:   fs,
		path: path,
		rec: record{
			Version: CurrentVersion,
			Cipher:  s.cipher,
		},
	}
	if s.passphrase != "" {
		salt, err := crypto.NewRandomSalt()
		if err != nil {
			return nil, err
		}
		key, err := crypto.DeriveEncryptionKey(s.passphrase, salt)
		if err != nil {
			return nil, err
		}
		c.key = key
		c.rec.KDF = kdfScrypt
		c.rec.Salt = hex.EncodeToString(salt)
	} else {
		key, err := crypto.NewRandomEncryptionKey()
		if err != nil {
			return nil, err
		}
		c.key = key
		c.rec.EncryptionKey = key.Hex()
	}
	if err := c.Save(); err != nil {
		return nil, err
	}
	return c, nil
}

// CipherName reports the recorded cipher
func (c *Config) CipherName() string {
	return c.rec.Cipher
}

// EncryptionKey reports the master key
func (c *Config) EncryptionKey() crypto.EncryptionKey {
	return c.key
}

// RootBlob reports the root directory key, or ok=false before the root
// has been created.
func (c *Config) RootBlob() (blockstore.Key, bool) {
	if c.root == nil {
		return blockstore.Key{}, false
	}
	return *c.root, true
}

// SetRootBlob records a freshly created root key. The caller still
// needs to Save.
func (c *Config) SetRootBlob(key blockstore.Key) {
	c.root = &key
	c.rec.RootBlob = key.String()
}

// Save persists the record. Key material in the file warrants owner-only
// permissions.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c.rec)
	if err != nil {
		return err
	}
	return afero.WriteFile(c.fs, c.path, data, 0600)
}

// Path reports where the record is persisted
func (c *Config) Path() string {
	return c.path
}
