package geometry

import (
	"figure-sync/core/logger"
	"figure-sync/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for new geometry detection.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the geometry sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/geometry", h.HandleSync)
}

// SyncRequest is the body of POST /sync/geometry.
type SyncRequest struct {
	Request
	// Apply writes the output table. Without it the run is a dry run.
	Apply bool `json:"apply"`
}

// HandleSync finds new features and optionally writes them out.
// @Summary Detect New Geometry
// @Description Finds parent features inside each selected figure and its boundary that touch no report feature of the figure. With apply the output table is recreated and filled with them.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body SyncRequest true "Geometry sync request"
// @Success 200 {object} Result "Plan and apply report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "Schema or data error"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/geometry [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := h.service.cfg.Options(req.Apply)
	res, err := h.service.Run(c.Context(), req.Request, opts)
	if err != nil {
		l.Error("Geometry sync failed", zap.Error(err))
		return server.ErrorResponse(c, err)
	}

	l.Info("Geometry sync finished",
		zap.String("output", res.Output),
		zap.Int("new", res.Plan.Summary.Additions),
		zap.Int("written", res.Report.Result.Appended),
	)
	return c.JSON(res)
}
