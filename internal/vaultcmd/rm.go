package vaultcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item and its descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := controller.DeleteItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !ok {
				return vaulterrors.NewItemNotFoundError(args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), "item removed")

			return nil
		},
	}
}
