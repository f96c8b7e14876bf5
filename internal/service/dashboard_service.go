package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/repository"
)

// DashboardService composes authorization and submission data into
// caller-scoped views.
type DashboardService interface {
	InstructorDashboard(ctx context.Context, email string) (dto.DashboardResponse, error)
	ActivitiesForStudent(ctx context.Context, email string) (dto.StudentActivitiesResponse, error)
}

type dashboardService struct {
	grants      repository.InstructorGrantRepository
	activities  repository.ActivityRepository
	submissions repository.SubmissionRepository
	cache       *DashboardCache
	logger      zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator. A nil cache disables
// caching.
func NewDashboardService(grants repository.InstructorGrantRepository, activities repository.ActivityRepository, submissions repository.SubmissionRepository, cache *DashboardCache, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		grants:      grants,
		activities:  activities,
		submissions: submissions,
		cache:       cache,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

// InstructorDashboard returns only activities the email holds a grant for,
// each with its instructor list and full submission list. An instructor of
// one activity never sees another activity's submissions through this path.
func (s *dashboardService) InstructorDashboard(ctx context.Context, email string) (dto.DashboardResponse, error) {
	if cached, ok := s.cache.Get(ctx, email); ok {
		s.logger.Debug().Str("email", email).Msg("dashboard cache hit")
		return cached, nil
	}

	grants, err := s.grants.ListByEmail(ctx, email)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		Email:      email,
		Activities: make([]dto.DashboardActivity, 0, len(grants)),
	}

	for _, grant := range grants {
		activity, err := s.activities.GetByID(ctx, grant.ActivityID)
		if err != nil {
			return dto.DashboardResponse{}, err
		}

		instructors, err := s.grants.ListByActivity(ctx, grant.ActivityID)
		if err != nil {
			return dto.DashboardResponse{}, err
		}

		submissions, err := s.submissions.ListByActivity(ctx, grant.ActivityID)
		if err != nil {
			return dto.DashboardResponse{}, err
		}

		response.Activities = append(response.Activities, dto.DashboardActivity{
			Activity:    dto.NewActivityResponse(activity),
			Instructors: dto.NewInstructorGrantResponseSlice(instructors),
			Submissions: dto.NewSubmissionResponseSlice(submissions),
		})
	}

	s.cache.Set(ctx, email, response)

	return response, nil
}

// ActivitiesForStudent lists the enabled activities a student email has
// submissions in.
func (s *dashboardService) ActivitiesForStudent(ctx context.Context, email string) (dto.StudentActivitiesResponse, error) {
	submissions, err := s.submissions.ListByEmail(ctx, email)
	if err != nil {
		return dto.StudentActivitiesResponse{}, err
	}

	seen := map[string]bool{}
	activityIDs := make([]string, 0, len(submissions))
	for _, submission := range submissions {
		if !seen[submission.ActivityID] {
			seen[submission.ActivityID] = true
			activityIDs = append(activityIDs, submission.ActivityID)
		}
	}

	activities, err := s.activities.ListEnabledByIDs(ctx, activityIDs)
	if err != nil {
		return dto.StudentActivitiesResponse{}, err
	}

	return dto.StudentActivitiesResponse{
		Email:      email,
		Activities: dto.NewActivityResponseSlice(activities),
	}, nil
}
