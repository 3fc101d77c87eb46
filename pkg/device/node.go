package device

import (
	"context"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/device/status"
	"github.com/vaultfs/vaultfs/pkg/errors"
	"github.com/vaultfs/vaultfs/pkg/fsblob"
)

// Node is a resolved filesystem object, typed by its entry kind.
type Node interface {
	// Key names the node's blob
	Key() blockstore.Key

	// Type reports the node's kind
	Type() fsblob.EntryType
}

type node struct {
	dev *Device
	key blockstore.Key
}

func (n node) Key() blockstore.Key {
	return n.key
}

// Dir is a resolved directory
type Dir struct {
	node
}

// Type implements Node
func (d *Dir) Type() fsblob.EntryType {
	return fsblob.EntryTypeDir
}

func (d *Dir) load(ctx context.Context) (*fsblob.Dir, error) {
	return d.dev.dirAt(ctx, d.key)
}

// Entries lists the directory's entries
func (d *Dir) Entries(ctx context.Context) ([]fsblob.Entry, error) {
	dir, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	return dir.Entries(), nil
}

// Lookup resolves one child by name
func (d *Dir) Lookup(ctx context.Context, name string) (Node, error) {
	dir, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := dir.GetChild(name)
	if err != nil {
		if errors.Is(err, fsblob.ErrNoSuchEntry) {
			return nil, status.ErrPathNotFound.Wrap(err)
		}
		return nil, err
	}
	return d.dev.nodeForEntry(entry)
}

// CreateChildDir creates an empty child directory under name
func (d *Dir) CreateChildDir(ctx context.Context, name string) (*Dir, error) {
	key, err := d.createChild(ctx, name, fsblob.EntryTypeDir, func(ctx context.Context, blob blobstore.Blob) error {
		_, err := fsblob.InitializeDir(ctx, blob)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Dir{node: node{dev: d.dev, key: key}}, nil
}

// CreateChildFile creates an empty child file under name
func (d *Dir) CreateChildFile(ctx context.Context, name string) (*File, error) {
	key, err := d.createChild(ctx, name, fsblob.EntryTypeFile, nil)
	if err != nil {
		return nil, err
	}
	return &File{node: node{dev: d.dev, key: key}}, nil
}

// CreateChildSymlink creates a child symlink to target under name
func (d *Dir) CreateChildSymlink(ctx context.Context, name, target string) (*Symlink, error) {
	key, err := d.createChild(ctx, name, fsblob.EntryTypeSymlink, func(ctx context.Context, blob blobstore.Blob) error {
		return fsblob.InitializeSymlink(ctx, blob, target)
	})
	if err != nil {
		return nil, err
	}
	return &Symlink{node: node{dev: d.dev, key: key}}, nil
}

func (d *Dir) createChild(ctx context.Context, name string, typ fsblob.EntryType, initialize func(context.Context, blobstore.Blob) error) (blockstore.Key, error) {
	dir, err := d.load(ctx)
	if err != nil {
		return blockstore.Key{}, err
	}
	if _, err := dir.GetChild(name); err == nil {
		return blockstore.Key{}, status.ErrExists
	} else if !errors.Is(err, fsblob.ErrNoSuchEntry) {
		return blockstore.Key{}, err
	}

	blob, err := d.dev.blobs.Create(ctx)
	if err != nil {
		return blockstore.Key{}, err
	}
	if initialize != nil {
		if err := initialize(ctx, blob); err != nil {
			return blockstore.Key{}, err
		}
	}
	if err := dir.AddChild(name, blob.Key(), typ); err != nil {
		return blockstore.Key{}, err
	}
	if err := dir.Save(ctx); err != nil {
		return blockstore.Key{}, err
	}
	return blob.Key(), nil
}

// RemoveChild deletes the child entry under name along with its blob.
// A child directory must be empty.
func (d *Dir) RemoveChild(ctx context.Context, name string) error {
	dir, err := d.load(ctx)
	if err != nil {
		return err
	}
	entry, err := dir.GetChild(name)
	if err != nil {
		if errors.Is(err, fsblob.ErrNoSuchEntry) {
			return status.ErrPathNotFound.Wrap(err)
		}
		return err
	}
	if entry.Type == fsblob.EntryTypeDir {
		child, err := d.dev.dirAt(ctx, entry.Key)
		if err != nil {
			return err
		}
		if child.Len() > 0 {
			return status.ErrDirNotEmpty
		}
	}
	// the entry goes first: a blob left behind by a failed removal is
	// merely unreferenced, while a persisted entry pointing at a freed
	// key would dangle
	if err := dir.RemoveChild(name); err != nil {
		return err
	}
	if err := dir.Save(ctx); err != nil {
		return err
	}
	return d.dev.RemoveBlob(ctx, entry.Key)
}

// RenameChild renames a child within this directory. An existing entry
// under newName is removed first, under the same rules as RemoveChild.
func (d *Dir) RenameChild(ctx context.Context, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	dir, err := d.load(ctx)
	if err != nil {
		return err
	}
	entry, err := dir.GetChild(oldName)
	if err != nil {
		if errors.Is(err, fsblob.ErrNoSuchEntry) {
			return status.ErrPathNotFound.Wrap(err)
		}
		return err
	}
	if _, err := dir.GetChild(newName); err == nil {
		if err := d.RemoveChild(ctx, newName); err != nil {
			return err
		}
		// reload: RemoveChild persisted a new encoding
		dir, err = d.load(ctx)
		if err != nil {
			return err
		}
	}
	if err := dir.RemoveChild(oldName); err != nil {
		return err
	}
	if err := dir.AddChild(newName, entry.Key, entry.Type); err != nil {
		return err
	}
	return dir.Save(ctx)
}

// File is a resolved regular file. Its content is the raw byte stream
// of its blob.
type File struct {
	node
}

// Type implements Node
func (f *File) Type() fsblob.EntryType {
	return fsblob.EntryTypeFile
}

// Open returns the file's content blob for reading and writing
func (f *File) Open(ctx context.Context) (blobstore.Blob, error) {
	return f.dev.blobs.Load(ctx, f.key)
}

// Symlink is a resolved symbolic link
type Symlink struct {
	node
}

// Type implements Node
func (s *Symlink) Type() fsblob.EntryType {
	return fsblob.EntryTypeSymlink
}

// Target reads the link's target path
func (s *Symlink) Target(ctx context.Context) (string, error) {
	blob, err := s.dev.blobs.Load(ctx, s.key)
	if err != nil {
		return "", err
	}
	return fsblob.ReadSymlinkTarget(ctx, blob)
}
