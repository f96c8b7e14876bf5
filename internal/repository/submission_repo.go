package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courselab/activity-server-api/internal/models"
)

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	WithTx(tx *gorm.DB) SubmissionRepository
	Upsert(ctx context.Context, submission *models.Submission) error
	GetByKey(ctx context.Context, activityID, userID string) (models.Submission, error)
	ListByEmail(ctx context.Context, email string) ([]models.Submission, error)
	ListByActivity(ctx context.Context, activityID string) ([]models.Submission, error)
	UpdateScore(ctx context.Context, activityID, userID string, score float64) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) WithTx(tx *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: tx}
}

// Upsert is the insert-or-update write behind resubmission. The unique index
// on (user_id, activity_id) resolves concurrent writes to a single row. Token
// columns keep their first value (COALESCE on the stored side) and score is
// never part of the update set, so resubmission leaves grading untouched.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "activity_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":              gorm.Expr("excluded.name"),
			"email":             gorm.Expr("excluded.email"),
			"notebook_ref":      gorm.Expr("excluded.notebook_ref"),
			"notebook_filename": gorm.Expr("excluded.notebook_filename"),
			"prequiz_token":     gorm.Expr("COALESCE(submissions.prequiz_token, excluded.prequiz_token)"),
			"postquiz_token":    gorm.Expr("COALESCE(submissions.postquiz_token, excluded.postquiz_token)"),
			"updated_at":        gorm.Expr("excluded.updated_at"),
		}),
	}).Create(submission).Error
}

func (r *submissionRepository) GetByKey(ctx context.Context, activityID, userID string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Where("user_id = ?", userID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByEmail(ctx context.Context, email string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("updated_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByActivity(ctx context.Context, activityID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("user_id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) UpdateScore(ctx context.Context, activityID, userID string, score float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("activity_id = ?", activityID).
		Where("user_id = ?", userID).
		Update("score", score)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
