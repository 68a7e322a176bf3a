// Package cli implements patrolctl, a command-line client for the stats
// backend and for record files in the fixtures layout.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-cyber-patrol/internal/logging"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "patrolctl",
		Short:         "Query cyber patrol dashboards and record files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(newStatsCmd(), newRecordsCmd())
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(NewRootCmd().ExecuteContext(ctx))
}
