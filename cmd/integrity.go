package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"figure-sync/feature/integrity"
	"figure-sync/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the bucket and table schemas a sync depends on",
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and optionally fix the bucket folder structure",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		svc := integrity.NewService(rt.client, rt.cfg.Storage.Bucket, rt.db, rt.cfg.Database.GeometryColumn, rt.logger)

		missing, err := svc.CheckStructure(cmd.Context())
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			rt.logger.Info("Structure OK")
			return nil
		}

		rt.logger.Warn("Missing folders", zap.Strings("missing", missing))
		if !fixFlag {
			return nil
		}
		if err := svc.FixStructure(cmd.Context(), missing); err != nil {
			return err
		}
		rt.logger.Info("Structure fixed", zap.Strings("created", missing))
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema <table> [columns]",
	Short: "Check a table's columns, e.g. schema report loc_id,depth:Double",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var columns string
		if len(args) == 2 {
			columns = args[1]
		}
		req, err := checks.ParseRequirement(args[0], columns)
		if err != nil {
			return err
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		svc := integrity.NewService(rt.client, rt.cfg.Storage.Bucket, rt.db, rt.cfg.Database.GeometryColumn, rt.logger)

		report, err := svc.CheckSchema([]checks.Requirement{req})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.Matched {
			return fmt.Errorf("schema check failed for %s", req.Table)
		}
		return nil
	},
}

func init() {
	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	integrityCmd.AddCommand(structureCmd)
	integrityCmd.AddCommand(schemaCmd)
	RootCmd.AddCommand(integrityCmd)
}
