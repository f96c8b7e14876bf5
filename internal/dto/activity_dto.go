package dto

import (
	"time"

	"github.com/courselab/activity-server-api/internal/models"
)

// ActivityCreateRequest describes the payload for registering a new activity.
// The grading notebook travels alongside as a multipart file.
type ActivityCreateRequest struct {
	ActivityID string `form:"activity_id" json:"activity_id" validate:"required,min=2,max=64,excludesall= "`
	Name       string `form:"name" json:"name" validate:"required,min=2,max=255"`
	Enabled    *bool  `form:"enabled" json:"enabled"`
}

// ActivitySetEnabledRequest toggles the enabled flag of an activity.
type ActivitySetEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ActivityListRequest narrows and pages the activity listing.
type ActivityListRequest struct {
	EnabledOnly bool `query:"enabled_only"`
	Page        int  `query:"page"`
	PageSize    int  `query:"page_size"`
}

// ActivityResponse is the serialized representation returned to API clients.
type ActivityResponse struct {
	ActivityID         string    `json:"activity_id"`
	Name               string    `json:"name"`
	Enabled            bool      `json:"enabled"`
	GradingArtifactRef string    `json:"grading_artifact_ref,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ActivitySummary augments the activity record with headcounts for listings.
type ActivitySummary struct {
	ActivityResponse
	InstructorCount int `json:"instructor_count"`
	SubmissionCount int `json:"submission_count"`
}

// ActivityListResponse wraps a page of activity summaries.
type ActivityListResponse struct {
	Items      []ActivitySummary `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.Activity) ActivityResponse {
	return ActivityResponse{
		ActivityID:         model.ActivityID,
		Name:               model.Name,
		Enabled:            model.Enabled,
		GradingArtifactRef: model.GradingArtifactRef,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewActivitySummary converts a model with preloaded associations into a summary.
func NewActivitySummary(model models.Activity) ActivitySummary {
	return ActivitySummary{
		ActivityResponse: NewActivityResponse(model),
		InstructorCount:  len(model.Instructors),
		SubmissionCount:  len(model.Submissions),
	}
}

// NewActivityResponseSlice converts a slice of models into DTOs.
func NewActivityResponseSlice(activities []models.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		responses = append(responses, NewActivityResponse(activity))
	}

	return responses
}
