package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/models"
)

func newDashboardFixture(t *testing.T, cache *DashboardCache) (DashboardService, *serviceDeps) {
	t.Helper()

	deps := newServiceDeps(t)
	svc := NewDashboardService(deps.grants, deps.activities, deps.submissions, cache, testLogger())

	return svc, deps
}

func newTestCache(t *testing.T) (*DashboardCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return NewDashboardCache(client, time.Minute, testLogger()), server
}

func TestDashboardServiceScopesToGrants(t *testing.T) {
	svc, deps := newDashboardFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-a", Name: "A", Enabled: true}))
	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-b", Name: "B", Enabled: true}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "prof-a@example.edu", ActivityID: "dash-a", Name: "A"}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "prof-b@example.edu", ActivityID: "dash-b", Name: "B"}))

	score := 95.5
	require.NoError(t, deps.submissions.Upsert(ctx, &models.Submission{ActivityID: "dash-a", UserID: "s1", Name: "S1", Email: "s1@example.edu"}))
	require.NoError(t, deps.submissions.Upsert(ctx, &models.Submission{ActivityID: "dash-b", UserID: "s2", Name: "S2", Email: "s2@example.edu", Score: &score}))

	dashboard, err := svc.InstructorDashboard(ctx, "prof-a@example.edu")
	require.NoError(t, err)
	require.Equal(t, "prof-a@example.edu", dashboard.Email)
	require.Len(t, dashboard.Activities, 1)
	require.Equal(t, "dash-a", dashboard.Activities[0].Activity.ActivityID)
	require.Len(t, dashboard.Activities[0].Submissions, 1)
	require.Nil(t, dashboard.Activities[0].Submissions[0].Score)

	// Another activity's submissions never leak into this view.
	for _, activity := range dashboard.Activities {
		require.NotEqual(t, "dash-b", activity.Activity.ActivityID)
	}

	other, err := svc.InstructorDashboard(ctx, "prof-b@example.edu")
	require.NoError(t, err)
	require.Len(t, other.Activities, 1)
	require.NotNil(t, other.Activities[0].Submissions[0].Score)
	require.InDelta(t, 95.5, *other.Activities[0].Submissions[0].Score, 0.001)
}

func TestDashboardServiceEmptyForUnknownEmail(t *testing.T) {
	svc, _ := newDashboardFixture(t, nil)

	dashboard, err := svc.InstructorDashboard(context.Background(), "nobody@example.edu")
	require.NoError(t, err)
	require.Empty(t, dashboard.Activities)
}

func TestDashboardServiceCachesResponses(t *testing.T) {
	cache, server := newTestCache(t)
	svc, deps := newDashboardFixture(t, cache)
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-cache", Name: "Cache", Enabled: true}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "cache@example.edu", ActivityID: "dash-cache", Name: "C"}))

	first, err := svc.InstructorDashboard(ctx, "cache@example.edu")
	require.NoError(t, err)
	require.Len(t, first.Activities, 1)
	require.True(t, server.Exists("dashboard:instructor:cache@example.edu"))

	// A write that sidesteps the services (and so the invalidation) is
	// served from cache until the TTL expires.
	require.NoError(t, deps.submissions.Upsert(ctx, &models.Submission{ActivityID: "dash-cache", UserID: "s1", Name: "S1"}))

	cached, err := svc.InstructorDashboard(ctx, "cache@example.edu")
	require.NoError(t, err)
	require.Empty(t, cached.Activities[0].Submissions)

	server.FastForward(2 * time.Minute)

	fresh, err := svc.InstructorDashboard(ctx, "cache@example.edu")
	require.NoError(t, err)
	require.Len(t, fresh.Activities[0].Submissions, 1)
}

func TestDashboardServiceFreshAfterGrading(t *testing.T) {
	cache, _ := newTestCache(t)
	svc, deps := newDashboardFixture(t, cache)
	submissionSvc := NewSubmissionService(deps.db, deps.submissions, deps.activities, deps.grants, testValidator(), &fakeArtifactStore{}, deps.audit, cache, 100, testLogger())
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-grade", Name: "Grade", Enabled: true}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "grader@example.edu", ActivityID: "dash-grade", Name: "G"}))

	_, err := submissionSvc.Submit(ctx, submitPayload("dash-grade", "s1"), makeNotebookHeader(t, "work.ipynb", sampleNotebook))
	require.NoError(t, err)

	before, err := svc.InstructorDashboard(ctx, "grader@example.edu")
	require.NoError(t, err)
	require.Len(t, before.Activities, 1)
	require.Nil(t, before.Activities[0].Submissions[0].Score)

	_, err = submissionSvc.SetScore(ctx, "grader@example.edu", dto.ScoreUpdateRequest{ActivityID: "dash-grade", UserID: "s1", Score: 95.5})
	require.NoError(t, err)

	// Grading drops the cached view, so the next query reflects the new
	// score immediately, no TTL expiry needed.
	after, err := svc.InstructorDashboard(ctx, "grader@example.edu")
	require.NoError(t, err)
	require.NotNil(t, after.Activities[0].Submissions[0].Score)
	require.InDelta(t, 95.5, *after.Activities[0].Submissions[0].Score, 0.001)
}

func TestDashboardServiceFreshAfterSubmissionAndToggle(t *testing.T) {
	cache, _ := newTestCache(t)
	svc, deps := newDashboardFixture(t, cache)
	store := &fakeArtifactStore{}
	submissionSvc := NewSubmissionService(deps.db, deps.submissions, deps.activities, deps.grants, testValidator(), store, deps.audit, cache, 100, testLogger())
	activitySvc := NewActivityService(deps.db, deps.activities, deps.grants, testValidator(), store, deps.audit, cache, testLogger())
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-mut", Name: "Mut", Enabled: true}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "mut@example.edu", ActivityID: "dash-mut", Name: "M"}))

	empty, err := svc.InstructorDashboard(ctx, "mut@example.edu")
	require.NoError(t, err)
	require.Empty(t, empty.Activities[0].Submissions)

	_, err = submissionSvc.Submit(ctx, submitPayload("dash-mut", "s1"), makeNotebookHeader(t, "work.ipynb", sampleNotebook))
	require.NoError(t, err)

	withSubmission, err := svc.InstructorDashboard(ctx, "mut@example.edu")
	require.NoError(t, err)
	require.Len(t, withSubmission.Activities[0].Submissions, 1)

	_, err = activitySvc.SetEnabled(ctx, "mut@example.edu", "dash-mut", false)
	require.NoError(t, err)

	toggled, err := svc.InstructorDashboard(ctx, "mut@example.edu")
	require.NoError(t, err)
	require.False(t, toggled.Activities[0].Activity.Enabled)
}

func TestDashboardServiceFreshAfterGrant(t *testing.T) {
	cache, _ := newTestCache(t)
	svc, deps := newDashboardFixture(t, cache)
	authSvc := NewAuthorizationService(deps.db, deps.grants, deps.activities, testValidator(), false, deps.audit, cache, testLogger())
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-grant", Name: "Grant", Enabled: true}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "owner@example.edu", ActivityID: "dash-grant", Name: "Owner"}))

	before, err := svc.InstructorDashboard(ctx, "owner@example.edu")
	require.NoError(t, err)
	require.Len(t, before.Activities[0].Instructors, 1)

	_, err = authSvc.Grant(ctx, "owner@example.edu", dto.InstructorGrantRequest{
		Email:      "joiner@example.edu",
		Name:       "Joiner",
		ActivityID: "dash-grant",
	})
	require.NoError(t, err)

	after, err := svc.InstructorDashboard(ctx, "owner@example.edu")
	require.NoError(t, err)
	require.Len(t, after.Activities[0].Instructors, 2)
}

func TestDashboardServiceActivitiesForStudent(t *testing.T) {
	svc, deps := newDashboardFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-stu-on", Name: "On", Enabled: true}))
	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "dash-stu-off", Name: "Off", Enabled: false}))

	require.NoError(t, deps.submissions.Upsert(ctx, &models.Submission{ActivityID: "dash-stu-on", UserID: "s1", Name: "S", Email: "stu@example.edu"}))
	require.NoError(t, deps.submissions.Upsert(ctx, &models.Submission{ActivityID: "dash-stu-off", UserID: "s1", Name: "S", Email: "stu@example.edu"}))

	response, err := svc.ActivitiesForStudent(ctx, "stu@example.edu")
	require.NoError(t, err)
	require.Len(t, response.Activities, 1)
	require.Equal(t, "dash-stu-on", response.Activities[0].ActivityID)
}
