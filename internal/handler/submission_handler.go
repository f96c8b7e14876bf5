package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/middleware"
	"github.com/courselab/activity-server-api/internal/service"
	"github.com/courselab/activity-server-api/internal/utils"
	"github.com/courselab/activity-server-api/pkg/notebook"
)

// SubmissionHandler manages submission and scoring endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided API group.
func (h *SubmissionHandler) Register(api fiber.Router, requireIdentity fiber.Handler) {
	api.Post("/submissions", h.submit)
	api.Get("/submissions/by-email/:email", requireIdentity, h.listByEmail)
	api.Put("/scores", requireIdentity, h.setScore)
	api.Get("/activities/:activity_id/submissions/:user_id/notebook", requireIdentity, h.downloadNotebook)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	payload := dto.SubmissionCreateRequest{
		UserID:        c.FormValue("user_id"),
		Name:          c.FormValue("name"),
		ActivityID:    c.FormValue("activity_id"),
		Email:         c.FormValue("email"),
		PrequizToken:  optionalFormValue(c, "prequiz_token"),
		PostquizToken: optionalFormValue(c, "postquiz_token"),
	}

	file, err := c.FormFile("notebook")
	if err != nil {
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, "notebook", "notebook file is required")
	}

	submission, err := h.service.Submit(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err, payload.ActivityID)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission received", submission)
}

func (h *SubmissionHandler) listByEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	if !strings.EqualFold(middleware.IdentityEmail(c), email) {
		return utils.SendFailure(c, fiber.StatusForbidden, utils.KindUnauthorized, email, "verified identity does not match requested email")
	}

	submissions, err := h.service.ListByEmail(c.Context(), email)
	if err != nil {
		return h.handleError(c, err, email)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) setScore(c *fiber.Ctx) error {
	var payload dto.ScoreUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, "", "invalid request body")
	}

	submission, err := h.service.SetScore(c.Context(), middleware.IdentityEmail(c), payload)
	if err != nil {
		return h.handleError(c, err, payload.ActivityID+"/"+payload.UserID)
	}

	return utils.SendSuccess(c, "score updated", submission)
}

func (h *SubmissionHandler) downloadNotebook(c *fiber.Ctx) error {
	activityID := c.Params("activity_id")
	userID := c.Params("user_id")

	download, err := h.service.NotebookRef(c.Context(), middleware.IdentityEmail(c), activityID, userID)
	if err != nil {
		return h.handleError(c, err, activityID+"/"+userID)
	}

	return utils.SendSuccess(c, "notebook located", download)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error, key string) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		return utils.SendFailure(c, fiber.StatusNotFound, utils.KindNotFound, key, "activity not found")
	case errors.Is(err, service.ErrActivityDisabled):
		return utils.SendFailure(c, fiber.StatusConflict, utils.KindActivityDisabled, key, "activity is disabled")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendFailure(c, fiber.StatusNotFound, utils.KindNotFound, key, "submission not found")
	case errors.Is(err, service.ErrNotInstructor):
		return utils.SendFailure(c, fiber.StatusForbidden, utils.KindUnauthorized, key, "not an instructor for this activity")
	case errors.Is(err, service.ErrScoreOutOfRange):
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, key, "score is out of range")
	case errors.Is(err, notebook.ErrInvalid):
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, "notebook", err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendFailure(c, fiber.StatusBadRequest, utils.KindValidation, key, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendFailure(c, fiber.StatusInternalServerError, utils.KindInternal, "", "internal server error")
	}
}

func optionalFormValue(c *fiber.Ctx, key string) *string {
	value := c.FormValue(key)
	if value == "" {
		return nil
	}
	return &value
}
