package cmd

import (
	"fmt"
	"os"

	"figure-sync/core/logger"
	"figure-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunFlag bool
	yesConfirm bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "figure-sync",
	Short: "Figure report reconciliation",
	Long: `figure-sync keeps figure report tables in line with their master data.
It updates report attributes, finds new features and imports new table records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console debug config gives readable ISO8601 timestamps on a terminal.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fields := []zap.Field{zap.Error(err)}
		if stage := reconcile.StageOf(err); stage != "" {
			fields = append(fields, zap.String("stage", string(stage)))
		}
		l.Error("command failed", fields...)
		_ = l.Sync()
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Plan only, never apply (overrides sync.dry_run)")
	RootCmd.PersistentFlags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm changes (non-interactive)")
}
