// Copyright © 2026 VaultFS

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <path> <target>",
	Short: "Create a symlink",
	Args:  cobra.ExactArgs(2),
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
		if _, err := dir.CreateChildSymlink(ctx, name, args[1]); err != nil {
			wrapFatalln("create symlink "+args[0], err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
