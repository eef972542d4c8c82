package vaultcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/vault"
)

func newLockoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lockout",
		Short: "View or change the brute-force lockout policy",
	}

	cmd.AddCommand(newLockoutGetCmd(), newLockoutSetCmd())

	return cmd
}

func newLockoutGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the brute-force lockout policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := controller.GetBruteForceConfig(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "enabled:          %t\nmax_attempts:     %d\nlockout_minutes:  %d\n",
				cfg.Enabled, cfg.MaxAttempts, cfg.LockoutDurationMinutes)

			return nil
		},
	}
}

func newLockoutSetCmd() *cobra.Command {
	var (
		enabled     bool
		maxAttempts int
		minutes     int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the brute-force lockout policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return controller.SetBruteForceConfig(cmd.Context(), vault.BruteForceConfig{
				Enabled:                enabled,
				MaxAttempts:            maxAttempts,
				LockoutDurationMinutes: minutes,
			})
		},
	}

	cmd.Flags().BoolVar(&enabled, "enabled", true, "whether lockout tracking is armed")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 5, "consecutive failed attempts before lockout")
	cmd.Flags().IntVar(&minutes, "minutes", 1, "lockout duration in minutes")

	return cmd
}
