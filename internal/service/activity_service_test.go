package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/models"
	"github.com/courselab/activity-server-api/pkg/notebook"
)

func newActivityFixture(t *testing.T) (ActivityService, *fakeArtifactStore, *serviceDeps) {
	t.Helper()

	deps := newServiceDeps(t)
	store := &fakeArtifactStore{}
	svc := NewActivityService(deps.db, deps.activities, deps.grants, testValidator(), store, deps.audit, nil, testLogger())

	return svc, store, deps
}

func TestActivityServiceCreate(t *testing.T) {
	svc, store, deps := newActivityFixture(t)
	ctx := context.Background()

	payload := dto.ActivityCreateRequest{ActivityID: "svc-create", Name: "Service Create"}
	created, err := svc.Create(ctx, "prof@example.edu", payload, makeNotebookHeader(t, "grading.ipynb", sampleNotebook))
	require.NoError(t, err)
	require.Equal(t, "svc-create", created.ActivityID)
	require.True(t, created.Enabled)
	require.Equal(t, "https://artifacts.test/grading.ipynb", created.GradingArtifactRef)
	require.Equal(t, 1, store.uploads)

	stored, err := deps.activities.GetByID(ctx, "svc-create")
	require.NoError(t, err)
	require.Equal(t, "Service Create", stored.Name)
}

func TestActivityServiceCreateDuplicateSlug(t *testing.T) {
	svc, store, deps := newActivityFixture(t)
	ctx := context.Background()

	payload := dto.ActivityCreateRequest{ActivityID: "svc-dup", Name: "Original"}
	_, err := svc.Create(ctx, "prof@example.edu", payload, makeNotebookHeader(t, "grading.ipynb", sampleNotebook))
	require.NoError(t, err)

	clash := dto.ActivityCreateRequest{ActivityID: "svc-dup", Name: "Clash"}
	_, err = svc.Create(ctx, "prof@example.edu", clash, makeNotebookHeader(t, "other.ipynb", sampleNotebook))
	require.ErrorIs(t, err, ErrActivityExists)

	// The rejected create leaves the stored record untouched and never
	// reaches the artifact store.
	stored, err := deps.activities.GetByID(ctx, "svc-dup")
	require.NoError(t, err)
	require.Equal(t, "Original", stored.Name)
	require.Equal(t, 1, store.uploads)
}

func TestActivityServiceCreateRejectsBadNotebook(t *testing.T) {
	svc, store, _ := newActivityFixture(t)
	ctx := context.Background()

	payload := dto.ActivityCreateRequest{ActivityID: "svc-bad-nb", Name: "Bad Notebook"}
	_, err := svc.Create(ctx, "prof@example.edu", payload, makeNotebookHeader(t, "grading.ipynb", `{"not":"a notebook"}`))
	require.ErrorIs(t, err, notebook.ErrInvalid)
	require.Zero(t, store.uploads)
}

func TestActivityServiceSetEnabled(t *testing.T) {
	svc, _, deps := newActivityFixture(t)
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "svc-toggle", Name: "Toggle", Enabled: true}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "prof@example.edu", ActivityID: "svc-toggle", Name: "Prof"}))

	updated, err := svc.SetEnabled(ctx, "prof@example.edu", "svc-toggle", false)
	require.NoError(t, err)
	require.False(t, updated.Enabled)

	stored, err := deps.activities.GetByID(ctx, "svc-toggle")
	require.NoError(t, err)
	require.False(t, stored.Enabled)
}

func TestActivityServiceSetEnabledRequiresGrant(t *testing.T) {
	svc, _, deps := newActivityFixture(t)
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "svc-gate", Name: "Gate", Enabled: true}))

	_, err := svc.SetEnabled(ctx, "stranger@example.edu", "svc-gate", false)
	require.ErrorIs(t, err, ErrNotInstructor)

	stored, err := deps.activities.GetByID(ctx, "svc-gate")
	require.NoError(t, err)
	require.True(t, stored.Enabled)
}

func TestActivityServiceSetEnabledUnknownActivity(t *testing.T) {
	svc, _, _ := newActivityFixture(t)

	_, err := svc.SetEnabled(context.Background(), "prof@example.edu", "svc-ghost", false)
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestActivityServiceListCountsAssociations(t *testing.T) {
	svc, _, deps := newActivityFixture(t)
	ctx := context.Background()

	require.NoError(t, deps.activities.Create(ctx, &models.Activity{ActivityID: "svc-list-counts", Name: "Counts", Enabled: true}))
	require.NoError(t, deps.grants.Upsert(ctx, &models.InstructorGrant{Email: "prof@example.edu", ActivityID: "svc-list-counts", Name: "Prof"}))

	listed, err := svc.List(ctx, dto.ActivityListRequest{PageSize: 100})
	require.NoError(t, err)

	var found bool
	for _, item := range listed.Items {
		if item.ActivityID == "svc-list-counts" {
			found = true
			require.Equal(t, 1, item.InstructorCount)
		}
	}
	require.True(t, found)
}
