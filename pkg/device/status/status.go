// Package status declares the filesystem-facing error constants
// returned by the device. An adapter translating OS calls can map each
// sentinel to a precise error code: absence, structural inconsistency
// and corruption stay distinguishable.
package status

import "github.com/vaultfs/vaultfs/pkg/errors"

var (
	// ErrInvalidPath indicates a path that is not absolute
	ErrInvalidPath = errors.New("path must be absolute")

	// ErrPathNotFound indicates that a path component does not exist
	ErrPathNotFound = errors.New("no such path")

	// ErrNotADirectory indicates that an intermediate path component is not a directory
	ErrNotADirectory = errors.New("path component is not a directory")

	// ErrNotAFile indicates that the resolved node is not a file
	ErrNotAFile = errors.New("node is not a file")

	// ErrNotASymlink indicates that the resolved node is not a symlink
	ErrNotASymlink = errors.New("node is not a symlink")

	// ErrExists indicates that a directory entry already exists under that name
	ErrExists = errors.New("entry exists already")

	// ErrDirNotEmpty indicates an attempt to remove a non-empty directory
	ErrDirNotEmpty = errors.New("directory is not empty")
)
