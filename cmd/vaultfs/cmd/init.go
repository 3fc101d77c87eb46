// Copyright © 2026 VaultFS

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd creates the configuration record and the empty root directory
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new store",
	Long: `Initialize a new store.

Creates the configuration record under the store directory and the empty
root directory blob. Pass --passphrase to keep the master key out of the
record; without it a random key is generated and stored.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dev, cfg, closer, err := openDevice(ctx)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer closer()

		fmt.Println("store:  ", flags.store)
		fmt.Println("config: ", cfg.Path())
		fmt.Println("cipher: ", cfg.CipherName())
		fmt.Println("root:   ", dev.RootKey())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
