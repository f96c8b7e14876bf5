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
)

// InstructorHandler manages instructor grant endpoints.
type InstructorHandler struct {
	service service.AuthorizationService
	logger  zerolog.Logger
}

// NewInstructorHandler builds an instructor handler instance.
func NewInstructorHandler(service service.AuthorizationService, logger zerolog.Logger) *InstructorHandler {
	return &InstructorHandler{
		service: service,
		logger:  logger.With().Str("component", "instructor_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *InstructorHandler) Register(router fiber.Router, requireIdentity fiber.Handler) {
	router.Post("", requireIdentity, h.grant)
}

func (h *InstructorHandler) grant(c *fiber.Ctx) error {
	var payload dto.InstructorGrantRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, "", "invalid request body")
	}

	grant, err := h.service.Grant(c.Context(), middleware.IdentityEmail(c), payload)
	if err != nil {
		return h.handleError(c, err, payload.ActivityID)
	}

	return utils.SendSuccess(c, "instructor granted", grant)
}

func (h *InstructorHandler) handleError(c *fiber.Ctx, err error, key string) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		return utils.SendFailure(c, fiber.StatusNotFound, utils.KindNotFound, key, "activity not found")
	case errors.Is(err, service.ErrNotInstructor):
		return utils.SendFailure(c, fiber.StatusForbidden, utils.KindUnauthorized, key, "not an instructor for this activity")
	case errors.As(err, &validationErrors):
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, key, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendFailure(c, fiber.StatusInternalServerError, utils.KindInternal, "", "internal server error")
	}
}
