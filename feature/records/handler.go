package records

import (
	"figure-sync/core/logger"
	"figure-sync/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for record imports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the record sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/records", h.HandleSync)
}

// SyncRequest is the body of POST /sync/records.
type SyncRequest struct {
	Request
	// Apply appends the new rows. Without it the run is a dry run.
	Apply bool `json:"apply"`
}

// HandleSync imports new records from a delimited file.
// @Summary Add New Table Records
// @Description Checks a delimited file against a table, finds the rows the table lacks and appends them when apply is true. The input may be a storage:// object.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body SyncRequest true "Records sync request"
// @Success 200 {object} Result "Plan, apply report and report object"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "Schema or data error"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/records [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := h.service.cfg.Options(req.Apply)
	res, err := h.service.Run(c.Context(), req.Request, opts)
	if err != nil {
		l.Error("Records sync failed", zap.String("input", req.Input), zap.Error(err))
		return server.ErrorResponse(c, err)
	}

	l.Info("Records sync finished",
		zap.String("table", req.Table),
		zap.Int("new", res.Plan.Summary.Additions),
		zap.Int("appended", res.Report.Result.Appended),
	)
	return c.JSON(res)
}
