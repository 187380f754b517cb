package cmd

import (
	"context"

	"figure-sync/feature/attributes"
	"figure-sync/feature/records"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recordsCmd = &cobra.Command{
	Use:   "records <input> <table> [key-fields]",
	Short: "Append the rows of a delimited file that a table lacks",
	Long: `Checks the file header and cell types against the table, then appends
the rows whose key is not in the table yet. Input is a local path or
storage://<object>. Key fields are ';' separated and default to every column.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		req := records.Request{Input: args[0], Table: args[1]}
		if len(args) == 3 {
			req.KeyFields = attributes.SplitList(args[2])
		}
		return runRecords(cmd.Context(), rt, req)
	},
}

func runRecords(ctx context.Context, rt *runtime, req records.Request) error {
	svc := records.NewService(rt.store, rt.client, rt.cfg.Storage, rt.cfg.Sync, rt.logger)

	plan, err := svc.Plan(ctx, req)
	if err != nil {
		return err
	}
	printPlan(rt.logger, plan)

	opts := rt.applyOptions(plan, false)
	if !opts.Confirmed || opts.DryRun {
		return nil
	}
	res, err := svc.Apply(ctx, plan, opts)
	if err != nil {
		return err
	}
	logApplied(rt.logger, res.Report)
	if res.ReportObject != "" {
		rt.logger.Info("Report uploaded", zap.String("object", res.ReportObject))
	}
	return nil
}

func init() {
	RootCmd.AddCommand(recordsCmd)
}
