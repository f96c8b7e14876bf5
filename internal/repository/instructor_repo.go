package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courselab/activity-server-api/internal/models"
)

// InstructorGrantRepository defines data operations for instructor grants.
type InstructorGrantRepository interface {
	WithTx(tx *gorm.DB) InstructorGrantRepository
	Upsert(ctx context.Context, grant *models.InstructorGrant) error
	Get(ctx context.Context, email, activityID string) (models.InstructorGrant, error)
	Exists(ctx context.Context, email, activityID string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]models.InstructorGrant, error)
	ListByActivity(ctx context.Context, activityID string) ([]models.InstructorGrant, error)
	CountByActivity(ctx context.Context, activityID string) (int64, error)
}

type instructorGrantRepository struct {
	db *gorm.DB
}

// NewInstructorGrantRepository instantiates the repository.
func NewInstructorGrantRepository(db *gorm.DB) InstructorGrantRepository {
	return &instructorGrantRepository{db: db}
}

func (r *instructorGrantRepository) WithTx(tx *gorm.DB) InstructorGrantRepository {
	return &instructorGrantRepository{db: tx}
}

// Upsert inserts the grant or absorbs the duplicate. A non-empty display name
// refreshes the stored one; an empty name leaves the existing row untouched.
func (r *instructorGrantRepository) Upsert(ctx context.Context, grant *models.InstructorGrant) error {
	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "activity_id"}},
		DoNothing: true,
	}
	if grant.Name != "" {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}, {Name: "activity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}
	}

	return r.db.WithContext(ctx).Clauses(conflict).Create(grant).Error
}

func (r *instructorGrantRepository) Get(ctx context.Context, email, activityID string) (models.InstructorGrant, error) {
	var grant models.InstructorGrant
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Where("activity_id = ?", activityID).
		First(&grant).Error; err != nil {
		return models.InstructorGrant{}, err
	}

	return grant, nil
}

func (r *instructorGrantRepository) Exists(ctx context.Context, email, activityID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InstructorGrant{}).
		Where("email = ?", email).
		Where("activity_id = ?", activityID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *instructorGrantRepository) ListByEmail(ctx context.Context, email string) ([]models.InstructorGrant, error) {
	var grants []models.InstructorGrant
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("activity_id ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}

	return grants, nil
}

func (r *instructorGrantRepository) ListByActivity(ctx context.Context, activityID string) ([]models.InstructorGrant, error) {
	var grants []models.InstructorGrant
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("email ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}

	return grants, nil
}

func (r *instructorGrantRepository) CountByActivity(ctx context.Context, activityID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InstructorGrant{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
