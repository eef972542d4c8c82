package vaultcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/input"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the vault",
	}

	cmd.AddCommand(newExportDecryptedCmd(), newExportEncryptedCmd())

	return cmd
}

func newExportDecryptedCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "decrypted",
		Short: "Export every item as a decrypted JSON document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pass, err := input.PromptPassword(cmd.OutOrStdout(), int(os.Stdin.Fd()))
			if err != nil {
				return err
			}
			defer zeroBytes(pass)

			doc, err := controller.ExportDecryptedVault(cmd.Context(), string(pass))
			if err != nil {
				return err
			}

			return writeExport(cmd, outFile, doc)
		},
	}

	cmd.Flags().StringVar(&outFile, "output", "", "write the document to this file instead of stdout")

	return cmd
}

func newExportEncryptedCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "encrypted",
		Short: "Export the raw vault directory as a stored-mode zip archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, err := controller.ExportEncryptedVault(cmd.Context())
			if err != nil {
				return err
			}

			return writeExport(cmd, outFile, archive)
		},
	}

	cmd.Flags().StringVar(&outFile, "output", "vault-export.zip", "write the archive to this file")

	return cmd
}

func writeExport(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	return nil
}
