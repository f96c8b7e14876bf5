package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/courselab/activity-server-api/internal/models"
)

func TestInstructorGrantRepositoryUpsertIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInstructorGrantRepository(db)
	ctx := context.Background()

	first := models.InstructorGrant{Email: "prof@example.edu", ActivityID: "grant-idem", Name: "Prof"}
	require.NoError(t, repo.Upsert(ctx, &first))

	second := models.InstructorGrant{Email: "prof@example.edu", ActivityID: "grant-idem", Name: "Prof"}
	require.NoError(t, repo.Upsert(ctx, &second))

	count, err := repo.CountByActivity(ctx, "grant-idem")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestInstructorGrantRepositoryUpsertRefreshesName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInstructorGrantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.InstructorGrant{Email: "prof@example.edu", ActivityID: "grant-name", Name: "Old Name"}))
	require.NoError(t, repo.Upsert(ctx, &models.InstructorGrant{Email: "prof@example.edu", ActivityID: "grant-name", Name: "New Name"}))

	stored, err := repo.Get(ctx, "prof@example.edu", "grant-name")
	require.NoError(t, err)
	require.Equal(t, "New Name", stored.Name)

	// An empty name must not wipe the stored one.
	require.NoError(t, repo.Upsert(ctx, &models.InstructorGrant{Email: "prof@example.edu", ActivityID: "grant-name"}))

	stored, err = repo.Get(ctx, "prof@example.edu", "grant-name")
	require.NoError(t, err)
	require.Equal(t, "New Name", stored.Name)
}

func TestInstructorGrantRepositoryExistsAndLists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInstructorGrantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.InstructorGrant{Email: "a@example.edu", ActivityID: "grant-list", Name: "A"}))
	require.NoError(t, repo.Upsert(ctx, &models.InstructorGrant{Email: "b@example.edu", ActivityID: "grant-list", Name: "B"}))

	exists, err := repo.Exists(ctx, "a@example.edu", "grant-list")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, "c@example.edu", "grant-list")
	require.NoError(t, err)
	require.False(t, exists)

	byActivity, err := repo.ListByActivity(ctx, "grant-list")
	require.NoError(t, err)
	require.Len(t, byActivity, 2)
	require.Equal(t, "a@example.edu", byActivity[0].Email)

	byEmail, err := repo.ListByEmail(ctx, "a@example.edu")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	require.Equal(t, "grant-list", byEmail[0].ActivityID)

	_, err = repo.Get(ctx, "c@example.edu", "grant-list")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
