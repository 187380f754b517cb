package cmd

import (
	"context"

	"figure-sync/feature/geometry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var geometryCmd = &cobra.Command{
	Use:   "geometry <parent> <child> <boundary> <extents> <extent-key> <figures> <delete-field> <delete-values> <output>",
	Short: "Find parent features missing from the report features",
	Long: `Joins parent features to each selected figure, keeps those inside the
figure's boundary and writes the ones touching no report feature to the
output table, which is recreated on every run.

Pass "" as boundary to use the extent table and as output to use the report
table name plus the configured suffix. Delete values are ';' separated; "0"
means none.`,
	Args: cobra.ExactArgs(9),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		req := geometry.Request{
			Parent:       args[0],
			Child:        args[1],
			Boundary:     args[2],
			Extents:      args[3],
			ExtentKey:    args[4],
			Figures:      args[5],
			DeleteField:  args[6],
			DeleteValues: geometry.ParseDeleteValues(args[7]),
			Output:       args[8],
		}
		return runGeometry(cmd.Context(), rt, req)
	},
}

func runGeometry(ctx context.Context, rt *runtime, req geometry.Request) error {
	svc := geometry.NewService(rt.store, rt.cfg.Sync, rt.logger)

	plan, err := svc.Plan(ctx, req)
	if err != nil {
		return err
	}
	printPlan(rt.logger, plan)

	// The output table is replaced even when nothing is new.
	opts := rt.applyOptions(plan, true)
	if !opts.Confirmed || opts.DryRun {
		return nil
	}
	report, err := svc.Apply(ctx, req, plan, opts)
	if err != nil {
		return err
	}
	rt.logger.Info("New features written",
		zap.String("output", plan.Target.Table),
		zap.Int("count", report.Result.Appended),
	)
	return nil
}

func init() {
	RootCmd.AddCommand(geometryCmd)
}
