package models

import "time"

// Activity is a gradable unit of coursework identified by a caller-supplied slug.
// Activities are never hard-deleted; Enabled is toggled instead so submission
// history stays intact.
type Activity struct {
	ActivityID         string            `gorm:"primaryKey;size:64" json:"activity_id"`
	Name               string            `gorm:"size:255;not null" json:"name"`
	Enabled            bool              `json:"enabled"`
	GradingArtifactRef string            `gorm:"size:512" json:"grading_artifact_ref"`
	GradingFilename    string            `gorm:"size:255" json:"grading_filename"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Instructors        []InstructorGrant `gorm:"foreignKey:ActivityID;references:ActivityID" json:"instructors,omitempty"`
	Submissions        []Submission      `gorm:"foreignKey:ActivityID;references:ActivityID" json:"submissions,omitempty"`
}
