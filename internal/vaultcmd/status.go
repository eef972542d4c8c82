package vaultcmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the vault is initialized and unlocked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := controller.Status(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized: %t\nunlocked:    %t\n", status.Initialized, status.Unlocked)

			if status.Strength != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "strength:    %s\n", *status.Strength)
			}

			return nil
		},
	}
}
