// Copyright © 2026 VaultFS

package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaultfs/vaultfs/pkg/blobstore"
	"github.com/vaultfs/vaultfs/pkg/device"
	devicestatus "github.com/vaultfs/vaultfs/pkg/device/status"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file's content to stdout",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dev, _, closer, err := openDevice(ctx)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		defer closer()

		n, err := dev.Resolve(ctx, args[0])
		if err != nil {
			wrapFatalln("resolve "+args[0], err)
			return
		}
		file, ok := n.(*device.File)
		if !ok {
			wrapFatalln(args[0], devicestatus.ErrNotAFile)
			return
		}
		blob, err := file.Open(ctx)
		if err != nil {
			wrapFatalln("open "+args[0], err)
			return
		}
		data, err := blobstore.ReadAll(ctx, blob)
		if err != nil {
			wrapFatalln("read "+args[0], err)
			return
		}
		if _, err := os.Stdout.Write(data); err != nil {
			wrapFatalln("write stdout", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
