// Copyright © 2026 VaultFS

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dev, _, closer, err := openDevice(ctx)
		if err != nil {
			wrapFatalln("open store", err)
			return
		}
		defer closer()

		p := "/"
		if len(args) == 1 {
			p = args[0]
		}
		dir, err := resolveDir(ctx, dev, p)
		if err != nil {
			wrapFatalln("resolve "+p, err)
			return
		}
		entries, err := dir.Entries(ctx)
		if err != nil {
			wrapFatalln("list "+p, err)
			return
		}
		for _, e := range entries {
			fmt.Printf("%-8s %s\n", e.Type, e.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
