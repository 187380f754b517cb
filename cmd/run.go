package cmd

import (
	"context"
	"fmt"

	"figure-sync/core/manifest"
	"figure-sync/feature/attributes"
	"figure-sync/feature/geometry"
	"figure-sync/feature/records"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run <manifest.yaml>",
	Short: "Run the jobs of a manifest in order",
	Long: `Runs every job of a YAML manifest in file order and stops at the first
failure. Each job is planned, confirmed and applied on its own.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		return runManifest(cmd.Context(), rt, m)
	},
}

func runManifest(ctx context.Context, rt *runtime, m *manifest.Manifest) error {
	for i, job := range m.Jobs {
		l := rt.logger.With(zap.String("job", job.Label()), zap.Int("index", i+1))
		l.Info("Starting job", zap.String("kind", job.Kind))

		jobRT := *rt
		jobRT.logger = l
		if err := runJob(ctx, &jobRT, job); err != nil {
			return fmt.Errorf("job %s: %w", job.Label(), err)
		}
	}
	rt.logger.Info("Manifest finished", zap.Int("jobs", len(m.Jobs)))
	return nil
}

func runJob(ctx context.Context, rt *runtime, job manifest.Job) error {
	switch job.Kind {
	case manifest.KindAttributes:
		var req attributes.Request
		if err := job.Decode(&req); err != nil {
			return err
		}
		return runAttributes(ctx, rt, req)
	case manifest.KindGeometry:
		var req geometry.Request
		if err := job.Decode(&req); err != nil {
			return err
		}
		return runGeometry(ctx, rt, req)
	case manifest.KindRecords:
		var req records.Request
		if err := job.Decode(&req); err != nil {
			return err
		}
		return runRecords(ctx, rt, req)
	default:
		return fmt.Errorf("unknown kind %q", job.Kind)
	}
}

func init() {
	RootCmd.AddCommand(runCmd)
}
