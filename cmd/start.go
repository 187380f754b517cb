package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"figure-sync/core/loader"
	"figure-sync/core/logger"
	"figure-sync/core/middleware/auth"
	"figure-sync/core/middleware/rayid"
	"figure-sync/core/reconcile"
	"figure-sync/feature/attributes"
	"figure-sync/feature/geometry"
	"figure-sync/feature/integrity"
	"figure-sync/feature/records"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "figure-sync/docs/swagger"
)

// @title Figure Sync API
// @version 1.0
// @description Reconciles figure report tables with their master data.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync server",
	Long:  `Starts the HTTP server exposing the sync jobs and integrity checks.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		cfg := rt.cfg
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if err := cfg.Server.Validate(); err != nil {
			return err
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		cache := reconcile.NewSourceCache(cfg.Sync.CacheTTL())

		mgr := loader.NewManager(logg)
		mgr.Register(attributes.NewFeature(rt.store, cache, cfg.Sync, logg))
		mgr.Register(geometry.NewFeature(rt.store, cfg.Sync, logg))
		mgr.Register(records.NewFeature(rt.store, rt.client, cfg.Storage, cfg.Sync, logg))
		mgr.Register(integrity.NewFeature(rt.client, cfg.Storage.Bucket, rt.db, cfg.Database.GeometryColumn, logg))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
