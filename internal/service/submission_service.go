package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/models"
	"github.com/courselab/activity-server-api/internal/repository"
	"github.com/courselab/activity-server-api/pkg/notebook"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrScoreOutOfRange indicates the score falls outside the accepted range.
var ErrScoreOutOfRange = errors.New("score is out of range")

// SubmissionService owns the submission lifecycle from first upload to scoring.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	SetScore(ctx context.Context, actorEmail string, payload dto.ScoreUpdateRequest) (dto.SubmissionResponse, error)
	ListByEmail(ctx context.Context, email string) ([]dto.SubmissionResponse, error)
	NotebookRef(ctx context.Context, actorEmail, activityID, userID string) (dto.NotebookDownload, error)
}

type submissionService struct {
	db          *gorm.DB
	submissions repository.SubmissionRepository
	activities  repository.ActivityRepository
	grants      repository.InstructorGrantRepository
	validator   *validator.Validate
	store       ArtifactStore
	audit       AuditRecorder
	cache       *DashboardCache
	maxScore    float64
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(db *gorm.DB, submissions repository.SubmissionRepository, activities repository.ActivityRepository, grants repository.InstructorGrantRepository, validate *validator.Validate, store ArtifactStore, audit AuditRecorder, cache *DashboardCache, maxScore float64, logger zerolog.Logger) SubmissionService {
	if maxScore <= 0 {
		maxScore = 100
	}

	return &submissionService{
		db:          db,
		submissions: submissions,
		activities:  activities,
		grants:      grants,
		validator:   validate,
		store:       store,
		audit:       audit,
		cache:       cache,
		maxScore:    maxScore,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit creates or replaces the submission for (user_id, activity_id). The
// upsert is a single conflict-resolving write, so concurrent resubmissions
// never produce a second row. Tokens keep their first value and an existing
// score is left untouched until re-graded.
func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := notebook.ValidateHeader(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	// Check the activity before uploading so a doomed submission never
	// leaves an orphaned artifact in the store. The transaction re-checks.
	precheck, err := s.activities.GetByID(ctx, payload.ActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrActivityNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !precheck.Enabled {
		return dto.SubmissionResponse{}, ErrActivityDisabled
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open notebook: %w", err)
	}
	defer reader.Close()

	notebookRef, err := s.store.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to store notebook: %w", err)
	}

	submission := models.Submission{
		ActivityID:       payload.ActivityID,
		UserID:           payload.UserID,
		Name:             payload.Name,
		Email:            payload.Email,
		PrequizToken:     normalizeToken(payload.PrequizToken),
		PostquizToken:    normalizeToken(payload.PostquizToken),
		NotebookRef:      notebookRef,
		NotebookFilename: file.Filename,
	}

	var stored models.Submission

	err = s.db.Transaction(func(tx *gorm.DB) error {
		activities := s.activities.WithTx(tx)
		submissions := s.submissions.WithTx(tx)

		activity, err := activities.GetByID(ctx, payload.ActivityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}
		if !activity.Enabled {
			return ErrActivityDisabled
		}

		if err := submissions.Upsert(ctx, &submission); err != nil {
			return err
		}

		current, err := submissions.GetByKey(ctx, payload.ActivityID, payload.UserID)
		if err != nil {
			return err
		}
		stored = current
		return nil
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	invalidateActivityDashboards(ctx, s.cache, s.grants, stored.ActivityID)

	s.logger.Info().
		Str("activity_id", stored.ActivityID).
		Str("user_id", stored.UserID).
		Msg("submission received")

	return dto.NewSubmissionResponse(stored), nil
}

// SetScore records a grade. The instructor check and the score write share a
// transaction so a revoked grant cannot race the update.
func (s *submissionService) SetScore(ctx context.Context, actorEmail string, payload dto.ScoreUpdateRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/courselab/activity-server-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.set_score")
	span.SetAttributes(
		attribute.String("score.activity_id", payload.ActivityID),
		attribute.String("score.user_id", payload.UserID),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	if payload.Score < 0 || payload.Score > s.maxScore {
		span.RecordError(ErrScoreOutOfRange)
		span.SetStatus(codes.Error, "score_out_of_range")
		return dto.SubmissionResponse{}, ErrScoreOutOfRange
	}

	var stored models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		grants := s.grants.WithTx(tx)
		submissions := s.submissions.WithTx(tx)

		isInstructor, err := grants.Exists(ctx, actorEmail, payload.ActivityID)
		if err != nil {
			return err
		}
		if !isInstructor {
			return ErrNotInstructor
		}

		if _, err := submissions.GetByKey(ctx, payload.ActivityID, payload.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}

		if err := submissions.UpdateScore(ctx, payload.ActivityID, payload.UserID, payload.Score); err != nil {
			return err
		}

		current, err := submissions.GetByKey(ctx, payload.ActivityID, payload.UserID)
		if err != nil {
			return err
		}
		stored = current
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_update_failed")
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Float64("score.value", payload.Score))

	invalidateActivityDashboards(ctx, s.cache, s.grants, payload.ActivityID)

	s.logger.Info().
		Str("activity_id", payload.ActivityID).
		Str("user_id", payload.UserID).
		Float64("score", payload.Score).
		Msg("submission scored")

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditEntry{
			ActorEmail: actorEmail,
			Action:     "submission.scored",
			EntityType: "submission",
			EntityKey:  payload.ActivityID + "/" + payload.UserID,
			Metadata:   map[string]interface{}{"score": payload.Score},
		})
	}

	return dto.NewSubmissionResponse(stored), nil
}

// ListByEmail returns the submissions carrying this email. The email itself
// is the only gate; identity verification happens at the boundary.
func (s *submissionService) ListByEmail(ctx context.Context, email string) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// NotebookRef resolves a stored notebook reference for an instructor of the
// submission's activity.
func (s *submissionService) NotebookRef(ctx context.Context, actorEmail, activityID, userID string) (dto.NotebookDownload, error) {
	if _, err := s.activities.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotebookDownload{}, ErrActivityNotFound
		}
		return dto.NotebookDownload{}, err
	}

	isInstructor, err := s.grants.Exists(ctx, actorEmail, activityID)
	if err != nil {
		return dto.NotebookDownload{}, err
	}
	if !isInstructor {
		return dto.NotebookDownload{}, ErrNotInstructor
	}

	submission, err := s.submissions.GetByKey(ctx, activityID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotebookDownload{}, ErrSubmissionNotFound
		}
		return dto.NotebookDownload{}, err
	}

	return dto.NotebookDownload{
		ActivityID:  submission.ActivityID,
		UserID:      submission.UserID,
		NotebookRef: submission.NotebookRef,
		Filename:    submission.NotebookFilename,
	}, nil
}

func normalizeToken(token *string) *string {
	if token == nil || *token == "" {
		return nil
	}
	return token
}
