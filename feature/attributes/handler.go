package attributes

import (
	"figure-sync/core/logger"
	"figure-sync/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for attribute synchronization.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the attribute sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/attributes", h.HandleSync)
}

// SyncRequest is the body of POST /sync/attributes.
type SyncRequest struct {
	Request
	// Apply commits the plan. Without it the run is a dry run.
	Apply bool `json:"apply"`
}

// HandleSync plans an attribute sync and optionally applies it.
// @Summary Synchronize Attributes
// @Description Compares the listed fields of the report table with the master table, figure by figure, and overwrites the ones that differ when apply is true.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body SyncRequest true "Attribute sync request"
// @Success 200 {object} Result "Plan and apply report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "Schema or data error"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/attributes [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := h.service.cfg.Options(req.Apply)
	res, err := h.service.Run(c.Context(), req.Request, opts)
	if err != nil {
		l.Error("Attribute sync failed", zap.Error(err))
		return server.ErrorResponse(c, err)
	}

	l.Info("Attribute sync finished",
		zap.Bool("applied", opts.Confirmed && !opts.DryRun),
		zap.Int("updates", res.Plan.Summary.Updates),
	)
	return c.JSON(res)
}
