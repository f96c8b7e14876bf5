package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/models"
	"github.com/courselab/activity-server-api/internal/repository"
	"github.com/courselab/activity-server-api/pkg/notebook"
)

// ErrActivityNotFound indicates the referenced activity does not exist.
var ErrActivityNotFound = errors.New("activity not found")

// ErrActivityExists indicates the activity slug is already taken.
var ErrActivityExists = errors.New("activity already exists")

// ErrActivityDisabled indicates a mutating call against a disabled activity.
var ErrActivityDisabled = errors.New("activity is disabled")

// ActivityService owns the activity catalog.
type ActivityService interface {
	Create(ctx context.Context, actorEmail string, payload dto.ActivityCreateRequest, gradingFile *multipart.FileHeader) (dto.ActivityResponse, error)
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	SetEnabled(ctx context.Context, actorEmail, activityID string, enabled bool) (dto.ActivityResponse, error)
}

type activityService struct {
	db         *gorm.DB
	activities repository.ActivityRepository
	grants     repository.InstructorGrantRepository
	validator  *validator.Validate
	store      ArtifactStore
	audit      AuditRecorder
	cache      *DashboardCache
	logger     zerolog.Logger
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(db *gorm.DB, activities repository.ActivityRepository, grants repository.InstructorGrantRepository, validate *validator.Validate, store ArtifactStore, audit AuditRecorder, cache *DashboardCache, logger zerolog.Logger) ActivityService {
	return &activityService{
		db:         db,
		activities: activities,
		grants:     grants,
		validator:  validate,
		store:      store,
		audit:      audit,
		cache:      cache,
		logger:     logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Create(ctx context.Context, actorEmail string, payload dto.ActivityCreateRequest, gradingFile *multipart.FileHeader) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	if gradingFile == nil {
		return dto.ActivityResponse{}, fmt.Errorf("grading notebook is required")
	}

	if err := notebook.ValidateHeader(gradingFile); err != nil {
		return dto.ActivityResponse{}, err
	}

	// Check the slug before uploading so a duplicate create never leaves an
	// orphaned grading artifact in the store. The transaction re-checks.
	if _, err := s.activities.GetByID(ctx, payload.ActivityID); err == nil {
		return dto.ActivityResponse{}, ErrActivityExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ActivityResponse{}, err
	}

	reader, err := gradingFile.Open()
	if err != nil {
		return dto.ActivityResponse{}, fmt.Errorf("failed to open grading notebook: %w", err)
	}
	defer reader.Close()

	gradingRef, err := s.store.Upload(ctx, gradingFile.Filename, reader)
	if err != nil {
		return dto.ActivityResponse{}, fmt.Errorf("failed to store grading notebook: %w", err)
	}

	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}

	activity := models.Activity{
		ActivityID:         payload.ActivityID,
		Name:               payload.Name,
		Enabled:            enabled,
		GradingArtifactRef: gradingRef,
		GradingFilename:    gradingFile.Filename,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		activities := s.activities.WithTx(tx)

		if _, err := activities.GetByID(ctx, payload.ActivityID); err == nil {
			return ErrActivityExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return activities.Create(ctx, &activity)
	})
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	s.logger.Info().Str("activity_id", activity.ActivityID).Msg("activity created")

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditEntry{
			ActorEmail: actorEmail,
			Action:     "activity.created",
			EntityType: "activity",
			EntityKey:  activity.ActivityID,
			Metadata:   map[string]interface{}{"name": activity.Name, "enabled": activity.Enabled},
		})
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityFilter{
		EnabledOnly: req.EnabledOnly,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}

	activities, total, err := s.activities.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivitySummary, 0, len(activities))
	for _, activity := range activities {
		items = append(items, dto.NewActivitySummary(activity))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: items, Pagination: pagination}, nil
}

// SetEnabled toggles the activity flag. The instructor check and the write
// share one transaction so a concurrent grant revocation cannot slip between
// them.
func (s *activityService) SetEnabled(ctx context.Context, actorEmail, activityID string, enabled bool) (dto.ActivityResponse, error) {
	var updated models.Activity

	err := s.db.Transaction(func(tx *gorm.DB) error {
		activities := s.activities.WithTx(tx)
		grants := s.grants.WithTx(tx)

		activity, err := activities.GetByID(ctx, activityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}

		isInstructor, err := grants.Exists(ctx, actorEmail, activityID)
		if err != nil {
			return err
		}
		if !isInstructor {
			return ErrNotInstructor
		}

		if err := activities.SetEnabled(ctx, activityID, enabled); err != nil {
			return err
		}

		activity.Enabled = enabled
		updated = activity
		return nil
	})
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	invalidateActivityDashboards(ctx, s.cache, s.grants, activityID)

	s.logger.Info().Str("activity_id", activityID).Bool("enabled", enabled).Msg("activity toggled")

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditEntry{
			ActorEmail: actorEmail,
			Action:     "activity.toggled",
			EntityType: "activity",
			EntityKey:  activityID,
			Metadata:   map[string]interface{}{"enabled": enabled},
		})
	}

	return dto.NewActivityResponse(updated), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
