// Package fsblob encodes filesystem objects into blobs: directories as
// ordered entry lists, symlinks as target paths.
//
// The encodings are self-describing (a leading format version byte),
// so a blob that was never initialized as a directory or symlink is
// rejected instead of misread.
package fsblob

import (
	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/errors"
)

// EntryType classifies a directory entry. The type is fixed when the
// entry is created and recorded in the directory encoding; it is never
// inferred from the child blob's content.
type EntryType byte

const (
	// EntryTypeDir marks a child directory
	EntryTypeDir EntryType = 0x01

	// EntryTypeFile marks a child file
	EntryTypeFile EntryType = 0x02

	// EntryTypeSymlink marks a child symbolic link
	EntryTypeSymlink EntryType = 0x03
)

func (t EntryType) String() string {
	switch t {
	case EntryTypeDir:
		return "dir"
	case EntryTypeFile:
		return "file"
	case EntryTypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

func (t EntryType) valid() bool {
	return t == EntryTypeDir || t == EntryTypeFile || t == EntryTypeSymlink
}

// Entry is one directory entry: a name, unique within its directory,
// bound to the key of the child's blob.
type Entry struct {
	Name string
	Type EntryType
	Key  blockstore.Key
}

var (
	// ErrNoSuchEntry indicates that a directory holds no entry under the requested name
	ErrNoSuchEntry = errors.New("no such directory entry")

	// ErrBadDirBlob indicates that a blob does not decode as a directory
	ErrBadDirBlob = errors.New("blob is not a valid directory")

	// ErrBadSymlinkBlob indicates that a blob does not decode as a symlink
	ErrBadSymlinkBlob = errors.New("blob is not a valid symlink")

	// ErrBadEntry indicates an entry with an empty name or invalid type
	ErrBadEntry = errors.New("invalid directory entry")
)
