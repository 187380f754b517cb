package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"figure-sync/core/config"
	"figure-sync/core/database"
	"figure-sync/core/gdb"
	"figure-sync/core/logger"
	"figure-sync/core/reconcile"
	"figure-sync/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles what every command needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  *gdb.Store
	client storage.Client
}

// bootstrap loads configuration and opens the geodatabase, plus the
// bucket when storage is enabled.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dryRunFlag {
		cfg.Sync.DryRun = true
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rt := &runtime{
		cfg:    cfg,
		logger: l,
		db:     db,
		store:  gdb.New(db, cfg.Database.GeometryColumn, l),
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		rt.client = client
	}
	return rt, nil
}

// applyOptions asks for confirmation when the plan would change anything
// and returns the options to apply it with.
func (rt *runtime) applyOptions(plan *reconcile.Plan, force bool) reconcile.Options {
	opts := rt.cfg.Sync.Options(false)
	if opts.DryRun {
		rt.logger.Info("Dry-run mode: No changes will be made.")
		return opts
	}
	if plan.IsEmpty() && !force {
		rt.logger.Info("Nothing to apply.")
		return opts
	}
	opts.Confirmed = confirmChanges(os.Stdin)
	if !opts.Confirmed {
		rt.logger.Warn("Operation cancelled by user. No changes were made.")
	}
	return opts
}

// confirmChanges prompts for confirmation unless --yes is set.
func confirmChanges(in io.Reader) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to apply the changes: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

// printPlan logs a plan summary and a sample of its changes.
func printPlan(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary
	l.Info("Sync plan",
		zap.String("job", plan.Job),
		zap.String("target", plan.Target.Table),
		zap.Int("extents", s.Extents),
		zap.Int("skipped_extents", s.SkippedExtents),
		zap.Int("additions", s.Additions),
		zap.Int("updates", s.Updates),
		zap.Int("records_updated", s.RecordsUpdated),
	)
	if len(plan.Skipped) > 0 {
		l.Warn("Extents skipped", zap.Strings("extents", plan.Skipped))
	}

	const maxShow = 5
	shown := 0
	for _, ep := range plan.Extents {
		for _, u := range ep.Delta.Updates {
			if shown == maxShow {
				break
			}
			l.Info("Sample update",
				zap.String("extent", ep.Extent.Value),
				zap.String("key", u.Key),
				zap.String("field", u.Field),
				zap.Any("old", u.Old),
				zap.Any("new", u.New),
			)
			shown++
		}
		for _, a := range ep.Delta.Additions {
			if shown == maxShow {
				break
			}
			l.Info("Sample addition", zap.String("extent", ep.Extent.Value), zap.String("key", a.Key))
			shown++
		}
	}
	if total := s.Updates + s.Additions; total > shown {
		l.Info("Additional changes not shown", zap.Int("count", total-shown))
	}
}
