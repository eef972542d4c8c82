package vaultcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/input"
)

func newUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Unlock the vault with the master password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pass, err := input.PromptPassword(cmd.OutOrStdout(), int(os.Stdin.Fd()))
			if err != nil {
				return err
			}
			defer zeroBytes(pass)

			if err := controller.Unlock(cmd.Context(), string(pass)); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "vault unlocked")

			return nil
		},
	}
}

func newLockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Lock the vault, discarding the in-memory key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			controller.Lock()
			fmt.Fprintln(cmd.OutOrStdout(), "vault locked")

			return nil
		},
	}
}
