// Copyright © 2026 VaultFS

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
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
		if _, err := dir.CreateChildDir(ctx, name); err != nil {
			wrapFatalln("create directory "+args[0], err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(mkdirCmd)
}
