// Package device assembles the storage stack and resolves absolute
// paths into directory, file and symlink nodes.
//
// A device owns the fully composed blob store (backend, encryption,
// caching, blobs) and the filesystem's root key for its whole
// lifetime. Data flows down through the layers on writes and back up
// on reads; no layer ever calls back into the one above it.
package device

import (
	"context"
	gopath "path"
	"strings"

	"go.uber.org/zap"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
	"github.com/vaultfs/vaultfs/pkg/blobstore/onblocks"
	blobstatus "github.com/vaultfs/vaultfs/pkg/blobstore/status"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/caching"
	"github.com/vaultfs/vaultfs/pkg/blockstore/encrypted"
	"github.com/vaultfs/vaultfs/pkg/crypto"
	"github.com/vaultfs/vaultfs/pkg/device/status"
	"github.com/vaultfs/vaultfs/pkg/errors"
	"github.com/vaultfs/vaultfs/pkg/fsblob"
	"github.com/vaultfs/vaultfs/pkg/metrics"
)

// Config is the configuration collaborator consumed at construction.
// It supplies the master key and the root blob key, and persists the
// root key once the device lazily creates the root directory.
type Config interface {
	// CipherName selects the symmetric cipher
	CipherName() string

	// EncryptionKey is the master key for the encrypting block store
	EncryptionKey() crypto.EncryptionKey

	// RootBlob reports the filesystem's root key, or ok=false when the
	// root directory has not been created yet
	RootBlob() (blockstore.Key, bool)

	// SetRootBlob records a freshly created root key
	SetRootBlob(blockstore.Key)

	// Save persists the configuration record
	Save() error
}

// Device resolves paths and creates, loads and removes blobs on behalf
// of higher-level file, directory and symlink objects.
type Device struct {
	blobs   blobstore.Store
	rootKey blockstore.Key
	l       *zap.Logger
}

type deviceOptions struct {
	cacheSize int64
	l         *zap.Logger
}

// Option to configure a device
type Option func(*deviceOptions)

// Logger sets a logger for this device and the stores it composes
func Logger(l *zap.Logger) Option {
	return func(o *deviceOptions) {
		if l != nil {
			o.l = l
		}
	}
}

// CacheSize sets the block cache budget in bytes
func CacheSize(size int64) Option {
	return func(o *deviceOptions) {
		o.cacheSize = size
	}
}

// New composes the storage stack over backend and returns a device.
//
// The chain is backend → encrypted → caching → blobs. When cfg reports
// no root blob yet, the device creates one empty root directory, hands
// the new key to cfg and saves it, exactly once.
func New(ctx context.Context, cfg Config, backend blockstore.Store, opts ...Option) (*Device, error) {
	o := &deviceOptions{
		cacheSize: caching.DefaultCacheSize,
		l:         zap.NewNop(),
	}
	for _, apply := range opts {
		apply(o)
	}

	cipher, err := crypto.FromName(cfg.CipherName())
	if err != nil {
		return nil, err
	}
	enc, err := encrypted.New(backend, cipher, cfg.EncryptionKey(), encrypted.Logger(o.l))
	if err != nil {
		return nil, err
	}
	cached, err := caching.New(enc, caching.CacheSize(o.cacheSize), caching.Logger(o.l))
	if err != nil {
		return nil, err
	}
	blobs, err := onblocks.New(cached, onblocks.Logger(o.l))
	if err != nil {
		return nil, err
	}
	return NewWithBlobStore(ctx, cfg, blobs, opts...)
}

// NewWithBlobStore builds a device over an already composed blob
// store. Tests use it to run the device against an uncached,
// unencrypted stack.
func NewWithBlobStore(ctx context.Context, cfg Config, blobs blobstore.Store, opts ...Option) (*Device, error) {
	o := &deviceOptions{l: zap.NewNop()}
	for _, apply := range opts {
		apply(o)
	}
	d := &Device{
		blobs: blobs,
		l:     o.l,
	}
	rootKey, err := d.getOrCreateRootKey(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.rootKey = rootKey
	return d, nil
}

func (d *Device) getOrCreateRootKey(ctx context.Context, cfg Config) (blockstore.Key, error) {
	if key, ok := cfg.RootBlob(); ok {
		return key, nil
	}
	blob, err := d.blobs.Create(ctx)
	if err != nil {
		return blockstore.Key{}, err
	}
	if _, err := fsblob.InitializeDir(ctx, blob); err != nil {
		return blockstore.Key{}, err
	}
	cfg.SetRootBlob(blob.Key())
	if err := cfg.Save(); err != nil {
		return blockstore.Key{}, err
	}
	d.l.Info("created root directory", zap.Stringer("key", blob.Key()))
	return blob.Key(), nil
}

// RootKey names the root directory blob
func (d *Device) RootKey() blockstore.Key {
	return d.rootKey
}

// Resolve walks an absolute path and returns a node typed by the
// resolved entry's kind.
//
// Absence of any component yields status.ErrPathNotFound; a
// non-directory in an intermediate position yields
// status.ErrNotADirectory; decryption and corruption failures
// propagate unchanged.
func (d *Device) Resolve(ctx context.Context, p string) (Node, error) {
	metrics.Inc(metrics.PathResolutions)

	if !gopath.IsAbs(p) {
		return nil, status.ErrInvalidPath
	}
	p = gopath.Clean(p)
	if p == "/" {
		return &Dir{node: node{dev: d, key: d.rootKey}}, nil
	}

	parent, err := d.loadDirBlob(ctx, gopath.Dir(p))
	if err != nil {
		return nil, err
	}
	entry, err := parent.GetChild(gopath.Base(p))
	if err != nil {
		if errors.Is(err, fsblob.ErrNoSuchEntry) {
			return nil, status.ErrPathNotFound.Wrap(err)
		}
		return nil, err
	}
	return d.nodeForEntry(entry)
}

// loadDirBlob walks the directory chain down to an absolute directory
// path. Every directory load is an independent, consistent snapshot.
func (d *Device) loadDirBlob(ctx context.Context, p string) (*fsblob.Dir, error) {
	key := d.rootKey
	for _, component := range splitPath(p) {
		dir, err := d.dirAt(ctx, key)
		if err != nil {
			return nil, err
		}
		entry, err := dir.GetChild(component)
		if err != nil {
			if errors.Is(err, fsblob.ErrNoSuchEntry) {
				return nil, status.ErrPathNotFound.Wrap(err)
			}
			return nil, err
		}
		if entry.Type != fsblob.EntryTypeDir {
			return nil, status.ErrNotADirectory
		}
		key = entry.Key
	}
	return d.dirAt(ctx, key)
}

func (d *Device) dirAt(ctx context.Context, key blockstore.Key) (*fsblob.Dir, error) {
	blob, err := d.blobs.Load(ctx, key)
	if err != nil {
		if errors.Is(err, blobstatus.ErrNotExists) {
			// a dangling entry is a recoverable lookup failure
			return nil, status.ErrPathNotFound.Wrap(err)
		}
		return nil, err
	}
	return fsblob.NewDir(ctx, blob)
}

func (d *Device) nodeForEntry(entry fsblob.Entry) (Node, error) {
	n := node{dev: d, key: entry.Key}
	switch entry.Type {
	case fsblob.EntryTypeDir:
		return &Dir{node: n}, nil
	case fsblob.EntryTypeFile:
		return &File{node: n}, nil
	case fsblob.EntryTypeSymlink:
		return &Symlink{node: n}, nil
	default:
		return nil, fsblob.ErrBadEntry
	}
}

// CreateBlob allocates a fresh blob for a higher-level object
func (d *Device) CreateBlob(ctx context.Context) (blobstore.Blob, error) {
	return d.blobs.Create(ctx)
}

// LoadBlob loads the blob rooted at key
func (d *Device) LoadBlob(ctx context.Context, key blockstore.Key) (blobstore.Blob, error) {
	return d.blobs.Load(ctx, key)
}

// RemoveBlob deletes the blob rooted at key. Removing an absent blob
// is a logged no-op, not a hard failure.
func (d *Device) RemoveBlob(ctx context.Context, key blockstore.Key) error {
	blob, err := d.blobs.Load(ctx, key)
	if err != nil {
		if errors.Is(err, blobstatus.ErrNotExists) {
			d.l.Warn("remove of absent blob", zap.Stringer("key", key))
			return nil
		}
		return err
	}
	return d.blobs.Remove(ctx, blob)
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
