// Copyright © 2026 VaultFS

package cmd

import (
	"context"
	gopath "path"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/spf13/afero"

	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/blockstore/badgerdb"
	"github.com/vaultfs/vaultfs/pkg/blockstore/localfs"
	"github.com/vaultfs/vaultfs/pkg/config"
	"github.com/vaultfs/vaultfs/pkg/device"
	devicestatus "github.com/vaultfs/vaultfs/pkg/device/status"
	"github.com/vaultfs/vaultfs/pkg/vlogger"
)

const (
	backendLocalFS = "localfs"
	backendBadger  = "badger"

	configFile = "vaultfs.yaml"
)

// openDevice assembles the device from the global flags. The returned
// close function releases the backend and must run after the command.
func openDevice(ctx context.Context) (*device.Device, *config.Config, func(), error) {
	if flags.store == "" {
		wrapFatalln("--store is required (or set store in the CLI config)", nil)
	}

	l, err := vlogger.New(flags.logLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	blockSize, err := units.RAMInBytes(flags.blockSize)
	if err != nil {
		return nil, nil, nil, err
	}
	if blockSize <= 0 || blockSize > 1<<30 {
		wrapFatalln("blocksize out of range", nil)
	}
	cacheSize, err := units.RAMInBytes(flags.cacheSize)
	if err != nil {
		return nil, nil, nil, err
	}

	copts := []config.Option{config.WithCipher(flags.cipher)}
	if flags.passphrase != "" {
		copts = append(copts, config.WithPassphrase(flags.passphrase))
	}
	cfg, err := config.LoadOrCreate(afero.NewOsFs(), filepath.Join(flags.store, configFile), copts...)
	if err != nil {
		return nil, nil, nil, err
	}

	var backend blockstore.Store
	closer := func() {}
	switch flags.backend {
	case backendLocalFS:
		fs := afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(flags.store, "blocks"))
		backend = localfs.New(fs, uint32(blockSize))
	case backendBadger:
		store, err := badgerdb.New(filepath.Join(flags.store, "db"), uint32(blockSize))
		if err != nil {
			return nil, nil, nil, err
		}
		backend = store
		closer = func() { _ = store.Close() }
	default:
		wrapFatalln("unknown backend "+flags.backend, nil)
	}

	dev, err := device.New(ctx, cfg, backend, device.Logger(l), device.CacheSize(cacheSize))
	if err != nil {
		closer()
		return nil, nil, nil, err
	}
	return dev, cfg, closer, nil
}

// resolveDir resolves p and asserts it is a directory
func resolveDir(ctx context.Context, dev *device.Device, p string) (*device.Dir, error) {
	n, err := dev.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	dir, ok := n.(*device.Dir)
	if !ok {
		return nil, devicestatus.ErrNotADirectory
	}
	return dir, nil
}

// splitParent splits an absolute path into its parent directory and
// final component.
func splitParent(p string) (string, string) {
	p = gopath.Clean(p)
	return gopath.Dir(p), gopath.Base(p)
}
