package vaultcmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print or save the decrypted content of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := controller.GetItemContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if outFile == "" {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}

			if err := os.WriteFile(outFile, content, 0o600); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", outFile, humanize.Bytes(uint64(len(content))))

			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "output", "", "write content to this file instead of stdout")

	return cmd
}
