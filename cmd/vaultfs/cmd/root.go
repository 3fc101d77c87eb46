// Copyright © 2026 VaultFS

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vaultfs/vaultfs/pkg/vlogger"
)

type vaultfsFlags struct {
	store      string
	backend    string
	blockSize  string
	cacheSize  string
	logLevel   string
	passphrase string
	cipher     string
}

var flags vaultfsFlags

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vaultfs",
	Short: "VaultFS manages an encrypted, block-based filesystem store",
	Long: `VaultFS stores a filesystem tree as encrypted fixed-size blocks.

Every file, directory and symlink lives in its own blob, cut into blocks
that are individually encrypted before they reach the backing store. The
store itself never sees plaintext, sizes beyond the block size, or the
shape of the tree.
`,
}

// used to patch over calls to os.Exit() during test
var logFatalln = log.Fatalln

func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(msg)
		return
	}
	logFatalln(fmt.Sprintf("%s: %v", msg, err))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.store, "store", "", "Directory holding the block store and its configuration record")
	pf.StringVar(&flags.backend, "backend", backendLocalFS, "Block store backend (localfs|badger)")
	pf.StringVar(&flags.blockSize, "blocksize", "32k", "Payload size of one storage block; fixed at init time")
	pf.StringVar(&flags.cacheSize, "cache-size", "32m", "Memory budget of the block cache")
	pf.StringVar(&flags.logLevel, "loglevel", vlogger.LogLevelNone, "Log level (info|debug|none)")
	pf.StringVar(&flags.passphrase, "passphrase", "", "Passphrase protecting the master key; the key itself is never stored")
	pf.StringVar(&flags.cipher, "cipher", "", "Cipher for a new store (aes-256-gcm|xchacha20-poly1305)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if os.Getenv("VAULTFS_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("VAULTFS_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.vaultfs")
		viper.SetConfigName("vaultfs-cli")
	}

	viper.SetEnvPrefix("vaultfs")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}

	// flags left at their default fall back to the CLI config file
	if flags.store == "" {
		flags.store = viper.GetString("store")
	}
	if !rootCmd.PersistentFlags().Changed("backend") && viper.IsSet("backend") {
		flags.backend = viper.GetString("backend")
	}
	if !rootCmd.PersistentFlags().Changed("blocksize") && viper.IsSet("blocksize") {
		flags.blockSize = viper.GetString("blocksize")
	}
	if flags.passphrase == "" {
		flags.passphrase = viper.GetString("passphrase")
	}
}
