package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/memo/internal/accounts/app"
	"github.com/aussiebroadwan/memo/pkg/cryptox"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	c := &cobra.Command{
		Use:           "memo",
		Short:         "Account service: registration, two step login and session tokens",
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	c.AddCommand(
		serve,
		newMigrateCmd(),
		newGenKeyCmd(),
	)
	return c
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return application.Run()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := app.NewLogger(cfg)
			if err := app.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}

			logger.Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)
			return nil
		},
	}
}

func newGenKeyCmd() *cobra.Command {
	var eddsa bool

	c := &cobra.Command{
		Use:   "genkey",
		Short: "Print a random encryption key or jwt secret",
		Long: "Print a random key suitable for MEMO_ENCRYPTION_KEY or MEMO_JWT_SECRET.\n" +
			"With --eddsa print an Ed25519 PKCS8 PEM for MEMO_JWT_KEY_FILE instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if eddsa {
				pem, err := cryptox.GenerateEd25519Key()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(pem)
				return err
			}

			key, err := cryptox.GenerateKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}

	c.Flags().BoolVar(&eddsa, "eddsa", false, "generate an Ed25519 signing key")
	return c
}
