package vaultcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/input"
	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
)

func newRotateCmd() *cobra.Command {
	var strength string

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Change the vault master password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := input.PromptReadSecure(cmd.OutOrStdout(), int(os.Stdin.Fd()), "Enter current password: ")
			if err != nil {
				return err
			}
			defer zeroBytes(current)

			next, err := input.PromptNewPassword(cmd.OutOrStdout(), int(os.Stdin.Fd()), minPasswordLen)
			if err != nil {
				return err
			}
			defer zeroBytes(next)

			if err := controller.UpdateMasterKey(cmd.Context(), string(current), string(next), vaultcrypto.Strength(strength)); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "master password updated")

			return nil
		},
	}

	cmd.Flags().StringVar(&strength, "strength", "", "new Argon2id strength profile: Fast, Recommended, or Paranoid")

	return cmd
}
