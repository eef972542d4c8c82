// Command vaultctl is a thin CLI shell over the vault core. All logic
// lives in the vault package; this binary only wires flags to it.
package main

import (
	"log"

	"github.com/ladzaretti/vaultcore/internal/vaultcmd"
)

func main() {
	if err := vaultcmd.MustInitialize(); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	vaultcmd.Execute()
}
