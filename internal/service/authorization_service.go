package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/models"
	"github.com/courselab/activity-server-api/internal/repository"
)

// ErrNotInstructor indicates the caller holds no grant for the target activity.
var ErrNotInstructor = errors.New("caller is not an instructor for this activity")

// AuthorizationService maps verified emails to per-activity instructor rights.
type AuthorizationService interface {
	Grant(ctx context.Context, actorEmail string, payload dto.InstructorGrantRequest) (dto.InstructorGrantResponse, error)
	IsInstructorFor(ctx context.Context, email, activityID string) (bool, error)
	AuthorizedActivities(ctx context.Context, email string) ([]string, error)
}

type authorizationService struct {
	db            *gorm.DB
	grants        repository.InstructorGrantRepository
	activities    repository.ActivityRepository
	validator     *validator.Validate
	openBootstrap bool
	audit         AuditRecorder
	cache         *DashboardCache
	logger        zerolog.Logger
}

// NewAuthorizationService constructs an AuthorizationService instance.
// openBootstrap=true reproduces the open-grant behaviour where any verified
// caller may grant; false requires the caller to hold a grant on the target
// activity unless the activity has no instructors yet.
func NewAuthorizationService(db *gorm.DB, grants repository.InstructorGrantRepository, activities repository.ActivityRepository, validate *validator.Validate, openBootstrap bool, audit AuditRecorder, cache *DashboardCache, logger zerolog.Logger) AuthorizationService {
	return &authorizationService{
		db:            db,
		grants:        grants,
		activities:    activities,
		validator:     validate,
		openBootstrap: openBootstrap,
		audit:         audit,
		cache:         cache,
		logger:        logger.With().Str("component", "authorization_service").Logger(),
	}
}

// Grant adds instructor rights for (email, activity). Granting an existing
// pair is a no-op success; the policy check and the write share a transaction.
func (s *authorizationService) Grant(ctx context.Context, actorEmail string, payload dto.InstructorGrantRequest) (dto.InstructorGrantResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InstructorGrantResponse{}, err
	}

	var stored models.InstructorGrant

	err := s.db.Transaction(func(tx *gorm.DB) error {
		activities := s.activities.WithTx(tx)
		grants := s.grants.WithTx(tx)

		if _, err := activities.GetByID(ctx, payload.ActivityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}

		if !s.openBootstrap {
			allowed, err := grants.Exists(ctx, actorEmail, payload.ActivityID)
			if err != nil {
				return err
			}
			if !allowed {
				count, err := grants.CountByActivity(ctx, payload.ActivityID)
				if err != nil {
					return err
				}
				// First grant on a fresh activity bootstraps its instructor set.
				if count > 0 {
					return ErrNotInstructor
				}
			}
		}

		grant := models.InstructorGrant{
			Email:      payload.Email,
			Name:       payload.Name,
			ActivityID: payload.ActivityID,
		}
		if err := grants.Upsert(ctx, &grant); err != nil {
			return err
		}

		current, err := grants.Get(ctx, payload.Email, payload.ActivityID)
		if err != nil {
			return err
		}
		stored = current
		return nil
	})
	if err != nil {
		return dto.InstructorGrantResponse{}, err
	}

	// The grantee's dashboard gains an activity and every instructor's view
	// of this activity gains a row in its instructor list.
	invalidateActivityDashboards(ctx, s.cache, s.grants, stored.ActivityID)

	s.logger.Info().
		Str("email", stored.Email).
		Str("activity_id", stored.ActivityID).
		Msg("instructor granted")

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditEntry{
			ActorEmail: actorEmail,
			Action:     "instructor.granted",
			EntityType: "instructor_grant",
			EntityKey:  stored.ActivityID,
			Metadata:   map[string]interface{}{"grantee": stored.Email},
		})
	}

	return dto.NewInstructorGrantResponse(stored), nil
}

func (s *authorizationService) IsInstructorFor(ctx context.Context, email, activityID string) (bool, error) {
	return s.grants.Exists(ctx, email, activityID)
}

func (s *authorizationService) AuthorizedActivities(ctx context.Context, email string) ([]string, error) {
	grants, err := s.grants.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	activityIDs := make([]string, 0, len(grants))
	for _, grant := range grants {
		activityIDs = append(activityIDs, grant.ActivityID)
	}

	return activityIDs, nil
}
