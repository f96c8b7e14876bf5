package models

import "time"

// Submission is a student's artifact and metadata for one activity, keyed by
// (user_id, activity_id). UserID is a caller-chosen handle and is independent
// of Email, which is the verifier-confirmed contact address.
type Submission struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ActivityID       string    `gorm:"size:64;not null;uniqueIndex:idx_submission_user_activity" json:"activity_id"`
	UserID           string    `gorm:"size:128;not null;uniqueIndex:idx_submission_user_activity" json:"user_id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Email            string    `gorm:"size:255;index" json:"email"`
	PrequizToken     *string   `gorm:"size:255" json:"prequiz_token"`
	PostquizToken    *string   `gorm:"size:255" json:"postquiz_token"`
	NotebookRef      string    `gorm:"size:512" json:"notebook_ref"`
	NotebookFilename string    `gorm:"size:255" json:"notebook_filename"`
	Score            *float64  `json:"score"`
	SubmittedAt      time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsGraded reports whether an instructor has scored the submission.
func (s Submission) IsGraded() bool {
	return s.Score != nil
}
