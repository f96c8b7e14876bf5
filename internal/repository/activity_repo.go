package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/courselab/activity-server-api/internal/models"
)

// ActivityFilter narrows and pages activity queries.
type ActivityFilter struct {
	EnabledOnly bool
	Page        int
	PageSize    int
}

// ActivityRepository defines data operations for activities.
type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository
	GetByID(ctx context.Context, activityID string) (models.Activity, error)
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error)
	ListEnabledByIDs(ctx context.Context, activityIDs []string) ([]models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	SetEnabled(ctx context.Context, activityID string, enabled bool) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepository{db: tx}
}

func (r *activityRepository) GetByID(ctx context.Context, activityID string) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		First(&activity).Error; err != nil {
		return models.Activity{}, err
	}

	return activity, nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})

	if filter.EnabledOnly {
		query = query.Where("enabled = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	if filter.PageSize > 0 {
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var activities []models.Activity
	if err := query.
		Preload("Instructors").
		Preload("Submissions").
		Order("activity_id ASC").
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func (r *activityRepository) ListEnabledByIDs(ctx context.Context, activityIDs []string) ([]models.Activity, error) {
	if len(activityIDs) == 0 {
		return []models.Activity{}, nil
	}

	var activities []models.Activity
	if err := r.db.WithContext(ctx).
		Where("activity_id IN ?", activityIDs).
		Where("enabled = ?", true).
		Order("activity_id ASC").
		Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) SetEnabled(ctx context.Context, activityID string, enabled bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("activity_id = ?", activityID).
		Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
