// Copyright © 2026 VaultFS

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// rmCmd removes a file, symlink or empty directory along with its blob
var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Remove a file, symlink or empty directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dev, _, closer, err := openDevice(ctx)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		defer closer()

		parent, name := splitParent(args[0])
		dir, err := resolveDir(ctx, dev, parent)
		if err != nil {
			wrapFatalln("resolve "+parent, err)
			return
		}
		if err := dir.RemoveChild(ctx, name); err != nil {
			wrapFatalln("remove "+args[0], err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
