// Command voucherctl is the operator tool for Sanad vouchers: it renders
// vouchers locally, inspects templates and issues development tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/sanad/backend/internal/infrastructure/config"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app carries what PersistentPreRunE loads for the subcommands
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	var logLevel string

	root := &cobra.Command{
		Use:   "voucherctl",
		Short: "Operator tooling for Sanad vouchers",
		Long: `voucherctl renders vouchers from JSON fixtures, writes and inspects
voucher templates, formats verification identifiers and issues access
tokens for local testing.

Settings come from config.toml, .env and SANAD_* variables, the same way
the server reads them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.ForCLI(logLevel)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(renderCmd(a))
	root.AddCommand(templateCmd())
	root.AddCommand(fieldsCmd())
	root.AddCommand(barcodeIDCmd())
	root.AddCommand(tokenCmd(a))
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
