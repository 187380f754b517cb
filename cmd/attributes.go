package cmd

import (
	"context"

	"figure-sync/core/reconcile"
	"figure-sync/feature/attributes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var attributesCmd = &cobra.Command{
	Use:   "attributes <master> <report> <extents> <extent-key> <source-key> <target-key> <fields> [figures]",
	Short: "Synchronize report attributes with the master table",
	Long: `Overwrites the listed report fields that differ from the master table,
figure by figure. Fields and figures are ';' separated. Figures defaults to
all; "none" runs once over the whole report table.

Examples:
  # Plan and confirm interactively
  attributes master report figures figure loc_id loc_id "status;depth" "Fig1;Fig2"

  # Plan only
  attributes master report figures figure loc_id loc_id status --dry-run`,
	Args: cobra.RangeArgs(7, 8),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		req := attributes.Request{
			Master:    args[0],
			Report:    args[1],
			Extents:   args[2],
			ExtentKey: args[3],
			SourceKey: args[4],
			TargetKey: args[5],
			Fields:    attributes.SplitList(args[6]),
		}
		if len(args) == 8 {
			req.Figures = args[7]
		}
		return runAttributes(cmd.Context(), rt, req)
	},
}

func runAttributes(ctx context.Context, rt *runtime, req attributes.Request) error {
	svc := attributes.NewService(rt.store, nil, rt.cfg.Sync, rt.logger)

	plan, err := svc.Plan(ctx, req)
	if err != nil {
		return err
	}
	printPlan(rt.logger, plan)

	opts := rt.applyOptions(plan, false)
	if !opts.Confirmed || opts.DryRun {
		return nil
	}
	report, err := svc.Apply(ctx, plan, opts)
	if err != nil {
		return err
	}
	logApplied(rt.logger, report)
	return nil
}

func logApplied(l *zap.Logger, report *reconcile.ApplyReport) {
	l.Info("Changes applied",
		zap.Int("updated", report.Result.Updated),
		zap.Int("appended", report.Result.Appended),
	)
	for extent, reason := range report.Failed {
		l.Error("Extent rolled back", zap.String("extent", extent), zap.String("error", reason))
	}
}

func init() {
	RootCmd.AddCommand(attributesCmd)
}
