package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/courselab/activity-server-api/internal/middleware"
	"github.com/courselab/activity-server-api/internal/service"
	"github.com/courselab/activity-server-api/internal/utils"
)

// DashboardHandler serves instructor- and student-scoped query endpoints.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler builds a dashboard handler instance.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the routes to the provided API group.
func (h *DashboardHandler) Register(api fiber.Router, requireIdentity fiber.Handler) {
	api.Get("/dashboard", requireIdentity, h.dashboard)
	api.Get("/activities/by-email/:email", requireIdentity, h.studentActivities)
}

func (h *DashboardHandler) dashboard(c *fiber.Ctx) error {
	email := middleware.IdentityEmail(c)

	dashboard, err := h.service.InstructorDashboard(c.Context(), email)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendFailure(c, fiber.StatusInternalServerError, utils.KindInternal, "", "internal server error")
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) studentActivities(c *fiber.Ctx) error {
	email := c.Params("email")
	if !strings.EqualFold(middleware.IdentityEmail(c), email) {
		return utils.SendFailure(c, fiber.StatusForbidden, utils.KindUnauthorized, email, "verified identity does not match requested email")
	}

	activities, err := h.service.ActivitiesForStudent(c.Context(), email)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendFailure(c, fiber.StatusInternalServerError, utils.KindInternal, "", "internal server error")
	}

	return utils.SendSuccess(c, "activities retrieved", activities)
}
