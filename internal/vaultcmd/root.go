package vaultcmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/internal/vaultpath"
	"github.com/ladzaretti/vaultcore/vault"
)

var (
	rootCmd = &cobra.Command{
		Use:           "vaultctl",
		Short:         "Local encrypted vault",
		Long:          "vaultctl is a command-line front end for a local password-protected encrypted vault.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return openController()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return closeController()
		},
	}

	verbose bool
	root    string

	controller *vault.Controller
)

func MustInitialize() error {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&root, "path", "", "vault root directory (overrides VAULT_PATH)")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newUnlockCmd())
	rootCmd.AddCommand(newLockCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newLockoutCmd())
	rootCmd.AddCommand(newRotateCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newDeleteVaultCmd())

	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vaultctl: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

func openController() error {
	p := root

	if p == "" {
		resolved, err := vaultpath.Resolve()
		if err != nil {
			return fmt.Errorf("resolve vault path: %w", err)
		}

		p = resolved
	}

	c, err := vault.Open(p, newLogger())
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	controller = c

	return nil
}

func closeController() error {
	if controller == nil {
		return nil
	}

	return controller.Close()
}
