// Copyright © 2026 VaultFS

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaultfs/vaultfs/pkg/device"
	devicestatus "github.com/vaultfs/vaultfs/pkg/device/status"
	"github.com/vaultfs/vaultfs/pkg/errors"
)

// writeCmd replaces a file's content with whatever arrives on stdin,
// creating the file when it does not exist yet.
var writeCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Write stdin into a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dev, _, closer, err := openDevice(ctx)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		defer closer()

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			wrapFatalln("read stdin", err)
			return
		}

		parent, name := splitParent(args[0])
		dir, err := resolveDir(ctx, dev, parent)
		if err != nil {
			wrapFatalln("resolve "+parent, err)
			return
		}

		var file *device.File
		n, err := dir.Lookup(ctx, name)
		switch {
		case err == nil:
			existing, ok := n.(*device.File)
			if !ok {
				wrapFatalln(args[0], devicestatus.ErrNotAFile)
				return
			}
			file = existing
		case errors.Is(err, devicestatus.ErrPathNotFound):
			file, err = dir.CreateChildFile(ctx, name)
			if err != nil {
				wrapFatalln("create "+args[0], err)
				return
			}
		default:
			wrapFatalln("lookup "+args[0], err)
			return
		}

		blob, err := file.Open(ctx)
		if err != nil {
			wrapFatalln("open "+args[0], err)
			return
		}
		if _, err := blob.WriteAt(ctx, data, 0); err != nil {
			wrapFatalln("write "+args[0], err)
			return
		}
		// truncate leftovers from previous, longer content
		if err := blob.Resize(ctx, int64(len(data))); err != nil {
			wrapFatalln("truncate "+args[0], err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
