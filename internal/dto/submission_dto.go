package dto

import (
	"time"

	"github.com/courselab/activity-server-api/internal/models"
)

// SubmissionCreateRequest describes the multipart form fields accompanying a
// notebook upload. Tokens are optional and write-once.
type SubmissionCreateRequest struct {
	UserID        string  `form:"user_id" json:"user_id" validate:"required,min=1,max=128"`
	Name          string  `form:"name" json:"name" validate:"required,min=1,max=255"`
	ActivityID    string  `form:"activity_id" json:"activity_id" validate:"required"`
	Email         string  `form:"email" json:"email" validate:"omitempty,email"`
	PrequizToken  *string `form:"prequiz_token" json:"prequiz_token"`
	PostquizToken *string `form:"postquiz_token" json:"postquiz_token"`
}

// ScoreUpdateRequest describes the payload for scoring a submission.
type ScoreUpdateRequest struct {
	ActivityID string  `json:"activity_id" validate:"required"`
	UserID     string  `json:"user_id" validate:"required"`
	Score      float64 `json:"score" validate:"min=0"`
}

// SubmissionResponse is the serialized submission returned to API clients.
type SubmissionResponse struct {
	ActivityID    string    `json:"activity_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PrequizToken  *string   `json:"prequiz_token"`
	PostquizToken *string   `json:"postquiz_token"`
	NotebookRef   string    `json:"notebook_ref"`
	Score         *float64  `json:"score"`
	SubmittedAt   time.Time `json:"submitted_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NotebookDownload points a client at the stored notebook artifact.
type NotebookDownload struct {
	ActivityID  string `json:"activity_id"`
	UserID      string `json:"user_id"`
	NotebookRef string `json:"notebook_ref"`
	Filename    string `json:"filename"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ActivityID:    model.ActivityID,
		UserID:        model.UserID,
		Name:          model.Name,
		Email:         model.Email,
		PrequizToken:  model.PrequizToken,
		PostquizToken: model.PostquizToken,
		NotebookRef:   model.NotebookRef,
		Score:         model.Score,
		SubmittedAt:   model.SubmittedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
