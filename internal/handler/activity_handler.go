package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/middleware"
	"github.com/courselab/activity-server-api/internal/service"
	"github.com/courselab/activity-server-api/internal/utils"
	"github.com/courselab/activity-server-api/pkg/notebook"
)

// ActivityHandler manages activity registry endpoints.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler builds an activity handler instance.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ActivityHandler) Register(router fiber.Router, requireIdentity fiber.Handler) {
	router.Get("", h.list)
	router.Post("", requireIdentity, h.create)
	router.Patch("/:activity_id/enabled", requireIdentity, h.setEnabled)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	payload := dto.ActivityCreateRequest{
		ActivityID: c.FormValue("activity_id"),
		Name:       c.FormValue("name"),
		Enabled:    parseFormBool(c, "enabled"),
	}

	gradingFile, err := c.FormFile("grading_notebook")
	if err != nil {
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, "grading_notebook", "grading notebook is required")
	}

	activity, err := h.service.Create(c.Context(), middleware.IdentityEmail(c), payload, gradingFile)
	if err != nil {
		return h.handleError(c, err, payload.ActivityID)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", activity)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	req := dto.ActivityListRequest{
		EnabledOnly: parseQueryBool(c, "enabled_only", false),
		Page:        parseQueryInt(c, "page", 1),
		PageSize:    parseQueryInt(c, "page_size", 0),
	}

	activities, err := h.service.List(c.Context(), req)
	if err != nil {
		return h.handleError(c, err, "")
	}

	return utils.SendSuccess(c, "activities retrieved", activities)
}

func (h *ActivityHandler) setEnabled(c *fiber.Ctx) error {
	activityID := c.Params("activity_id")

	var payload dto.ActivitySetEnabledRequest
	if err := c.BodyParser(&payload); err != nil || payload.Enabled == nil {
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, "enabled", "enabled flag is required")
	}

	activity, err := h.service.SetEnabled(c.Context(), middleware.IdentityEmail(c), activityID, *payload.Enabled)
	if err != nil {
		return h.handleError(c, err, activityID)
	}

	return utils.SendSuccess(c, "activity updated", activity)
}

func (h *ActivityHandler) handleError(c *fiber.Ctx, err error, key string) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrActivityExists):
		return utils.SendFailure(c, fiber.StatusConflict, utils.KindConflict, key, "activity already exists")
	case errors.Is(err, service.ErrActivityNotFound):
		return utils.SendFailure(c, fiber.StatusNotFound, utils.KindNotFound, key, "activity not found")
	case errors.Is(err, service.ErrNotInstructor):
		return utils.SendFailure(c, fiber.StatusForbidden, utils.KindUnauthorized, key, "not an instructor for this activity")
	case errors.Is(err, notebook.ErrInvalid):
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, "grading_notebook", err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, key, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendFailure(c, fiber.StatusInternalServerError, utils.KindInternal, "", "internal server error")
	}
}
