package models

import "time"

// InstructorGrant binds a verified email to management rights over one activity.
// The (email, activity_id) pair is unique so re-granting is absorbed by the
// database instead of producing duplicate rows.
type InstructorGrant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"size:255;not null;uniqueIndex:idx_grant_email_activity" json:"email"`
	ActivityID string    `gorm:"size:64;not null;uniqueIndex:idx_grant_email_activity" json:"activity_id"`
	Name       string    `gorm:"size:255" json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
