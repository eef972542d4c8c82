package vaultcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/input"
	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
)

const minPasswordLen = 8

func newInitCmd() *cobra.Command {
	var strength string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new vault",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pass, err := input.PromptNewPassword(cmd.OutOrStdout(), int(os.Stdin.Fd()), minPasswordLen)
			if err != nil {
				return err
			}
			defer zeroBytes(pass)

			if err := controller.Initialize(cmd.Context(), string(pass), vaultcrypto.Strength(strength)); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "vault initialized")

			return nil
		},
	}

	cmd.Flags().StringVar(&strength, "strength", "", "Argon2id strength profile: Fast, Recommended, or Paranoid")

	return cmd
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
