package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/giftcrm/internal/application"
	"github.com/JonMunkholm/giftcrm/internal/config"
	"github.com/JonMunkholm/giftcrm/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// options are shared by every subcommand.
type options struct {
	envFile string
	dataDir string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "giftcrm",
		Short:         "giftcrm - gift shipment records from the command line",
		Long:          `giftcrm imports client and partner spreadsheets, reconciles them with the stored records and writes the GLS shipment sheet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "Path to an optional .env file")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Override DATA_DIR for the json backend")

	rootCmd.AddCommand(
		newVersionCmd(),
		newImportCmd(opts),
		newExportCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
		newRestoreCmd(opts),
		newSettingsCmd(opts),
		newResetCmd(opts),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "giftcrm %s (built %s)\n", version, buildTime)
		},
	}
}

// openApp loads configuration and opens the store. Logs go to stderr so
// command output stays clean.
func openApp(ctx context.Context, cmd *cobra.Command, opts *options) (*application.App, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.Store.DataDir = opts.dataDir
	}
	slog.SetDefault(logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()))
	return application.Open(ctx, cfg)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
