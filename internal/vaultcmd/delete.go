package vaultcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/input"
)

func newDeleteVaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-vault",
		Short: "Permanently delete the vault and every blob it contains",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pass, err := input.PromptPassword(cmd.OutOrStdout(), int(os.Stdin.Fd()))
			if err != nil {
				return err
			}
			defer zeroBytes(pass)

			if err := controller.DeleteVault(cmd.Context(), string(pass)); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "vault deleted")

			return nil
		},
	}
}
