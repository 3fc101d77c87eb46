// Copyright © 2026 VaultFS

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaultfs/vaultfs/pkg/device"
)

// infoCmd prints the store's parameters; with a path it also describes
// the resolved node.
var infoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Show store and node information",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dev, cfg, closer, err := openDevice(ctx)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		defer closer()

		fmt.Println("store:     ", flags.store)
		fmt.Println("backend:   ", flags.backend)
		fmt.Println("blocksize: ", flags.blockSize)
		fmt.Println("cipher:    ", cfg.CipherName())
		fmt.Println("root:      ", dev.RootKey())

		if len(args) == 0 {
			return
		}
		n, err := dev.Resolve(ctx, args[0])
		if err != nil {
			wrapFatalln("resolve "+args[0], err)
			return
		}
		fmt.Println("path:      ", args[0])
		fmt.Println("type:      ", n.Type())
		fmt.Println("key:       ", n.Key())
		if file, ok := n.(*device.File); ok {
			blob, err := file.Open(ctx)
			if err != nil {
				wrapFatalln("open "+args[0], err)
				return
			}
			fmt.Println("size:      ", blob.Size())
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
