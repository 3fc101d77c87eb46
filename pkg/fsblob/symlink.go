package fsblob

import (
	"context"
	"fmt"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
)

const symlinkFormatVersion byte = 1

// InitializeSymlink writes the symlink encoding for target into a
// freshly created blob.
func InitializeSymlink(ctx context.Context, blob blobstore.Blob, target string) error {
	raw := make([]byte, 0, 1+len(target))
	raw = append(raw, symlinkFormatVersion)
	raw = append(raw, target...)
	if err := blob.Resize(ctx, int64(len(raw))); err != nil {
		return err
	}
	_, err := blob.WriteAt(ctx, raw, 0)
	return err
}

// ReadSymlinkTarget decodes the target path held by a symlink blob
func ReadSymlinkTarget(ctx context.Context, blob blobstore.Blob) (string, error) {
	raw, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", ErrBadSymlinkBlob.Wrap(fmt.Errorf("empty blob"))
	}
	if raw[0] != symlinkFormatVersion {
		return "", ErrBadSymlinkBlob.Wrap(fmt.Errorf("unknown format version %d", raw[0]))
	}
	return string(raw[1:]), nil
}
