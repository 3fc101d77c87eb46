// Copyright © 2026 VaultFS

package main

import (
	"github.com/vaultfs/vaultfs/cmd/vaultfs/cmd"
)

func main() {
	cmd.Execute()
}
