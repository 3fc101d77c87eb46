package fsblob

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore"
)

// dirFormatVersion is the leading byte of every directory blob
const dirFormatVersion byte = 1

// Dir is a structured reader/writer over one directory blob.
//
// Mutations act on the in-memory entry list only; Save persists the
// whole encoding in one pass, batching writes at block granularity.
// A Dir borrows its blob handle and holds no reference to any store.
type Dir struct {
	blob    blobstore.Blob
	entries []Entry
	index   map[string]int
	dirty   bool
}

// InitializeDir writes the canonical empty-entry-list encoding into a
// freshly created blob and returns a handle over it.
func InitializeDir(ctx context.Context, blob blobstore.Blob) (*Dir, error) {
	d := &Dir{
		blob:  blob,
		index: make(map[string]int),
		dirty: true,
	}
	if err := d.Save(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDir decodes the directory encoding held by blob. The decode is a
// point-in-time snapshot: later mutations of the underlying blob are
// not reflected in this handle.
func NewDir(ctx context.Context, blob blobstore.Blob) (*Dir, error) {
	raw, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}
	d := &Dir{
		blob:  blob,
		index: make(map[string]int),
	}
	if err := d.decode(raw); err != nil {
		return nil, err
	}
	return d, nil
}

// Key names the directory's blob
func (d *Dir) Key() blockstore.Key {
	return d.blob.Key()
}

// GetChild looks up an entry by exact name
func (d *Dir) GetChild(name string) (Entry, error) {
	i, ok := d.index[name]
	if !ok {
		return Entry{}, ErrNoSuchEntry
	}
	return d.entries[i], nil
}

// AddChild records an entry. Adding a name that already exists
// replaces that entry in place, keeping its position: a directory
// never holds two entries under one name.
func (d *Dir) AddChild(name string, key blockstore.Key, typ EntryType) error {
	if name == "" || !typ.valid() {
		return ErrBadEntry
	}
	if i, ok := d.index[name]; ok {
		d.entries[i].Key = key
		d.entries[i].Type = typ
	} else {
		d.index[name] = len(d.entries)
		d.entries = append(d.entries, Entry{Name: name, Type: typ, Key: key})
	}
	d.dirty = true
	return nil
}

// RemoveChild drops the entry under name
func (d *Dir) RemoveChild(name string) error {
	i, ok := d.index[name]
	if !ok {
		return ErrNoSuchEntry
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, name)
	for j := i; j < len(d.entries); j++ {
		d.index[d.entries[j].Name] = j
	}
	d.dirty = true
	return nil
}

// Entries returns the entry list in insertion order. The order carries
// no guarantee to callers; lookups go by name.
func (d *Dir) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len reports the number of entries
func (d *Dir) Len() int {
	return len(d.entries)
}

// Save persists the current entry list into the backing blob. It is a
// no-op when nothing changed since the last save or decode.
func (d *Dir) Save(ctx context.Context) error {
	if !d.dirty {
		return nil
	}
	raw := d.encode()
	if err := d.blob.Resize(ctx, int64(len(raw))); err != nil {
		return err
	}
	if _, err := d.blob.WriteAt(ctx, raw, 0); err != nil {
		return err
	}
	d.dirty = false
	return nil
}

func (d *Dir) encode() []byte {
	buf := make([]byte, 1, 1+len(d.entries)*(2+blockstore.KeySize))
	buf[0] = dirFormatVersion
	var scratch [binary.MaxVarintLen64]byte
	for _, e := range d.entries {
		n := binary.PutUvarint(scratch[:], uint64(len(e.Name)))
		buf = append(buf, scratch[:n]...)
		buf = append(buf, e.Name...)
		buf = append(buf, byte(e.Type))
		buf = append(buf, e.Key[:]...)
	}
	return buf
}

func (d *Dir) decode(raw []byte) error {
	if len(raw) == 0 {
		return ErrBadDirBlob.Wrap(fmt.Errorf("empty blob"))
	}
	if raw[0] != dirFormatVersion {
		return ErrBadDirBlob.Wrap(fmt.Errorf("unknown format version %d", raw[0]))
	}
	rest := raw[1:]
	for len(rest) > 0 {
		nameLen, n := binary.Uvarint(rest)
		// bound nameLen first: a corrupt huge length would overflow the
		// truncation arithmetic below
		if n <= 0 || nameLen > uint64(len(rest)) {
			return ErrBadDirBlob.Wrap(fmt.Errorf("invalid entry length at byte %d", len(raw)-len(rest)))
		}
		if uint64(len(rest)) < uint64(n)+nameLen+1+blockstore.KeySize {
			return ErrBadDirBlob.Wrap(fmt.Errorf("truncated entry at byte %d", len(raw)-len(rest)))
		}
		rest = rest[n:]
		name := string(rest[:nameLen])
		rest = rest[nameLen:]
		typ := EntryType(rest[0])
		rest = rest[1:]
		key := blockstore.MustNewKey(rest[:blockstore.KeySize])
		rest = rest[blockstore.KeySize:]

		if name == "" || !typ.valid() {
			return ErrBadDirBlob.Wrap(fmt.Errorf("invalid entry %q", name))
		}
		if _, dup := d.index[name]; dup {
			return ErrBadDirBlob.Wrap(fmt.Errorf("duplicate entry %q", name))
		}
		d.index[name] = len(d.entries)
		d.entries = append(d.entries, Entry{Name: name, Type: typ, Key: key})
	}
	return nil
}
