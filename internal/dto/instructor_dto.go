package dto

import (
	"time"

	"github.com/courselab/activity-server-api/internal/models"
)

// InstructorGrantRequest describes the payload for granting instructor rights.
type InstructorGrantRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"omitempty,min=2,max=255"`
	ActivityID string `json:"activity_id" validate:"required"`
}

// InstructorGrantResponse is the serialized grant returned to API clients.
type InstructorGrantResponse struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ActivityID string    `json:"activity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewInstructorGrantResponse converts a model into a DTO.
func NewInstructorGrantResponse(model models.InstructorGrant) InstructorGrantResponse {
	return InstructorGrantResponse{
		Email:      model.Email,
		Name:       model.Name,
		ActivityID: model.ActivityID,
		CreatedAt:  model.CreatedAt,
	}
}

// NewInstructorGrantResponseSlice converts a slice of models into DTOs.
func NewInstructorGrantResponseSlice(grants []models.InstructorGrant) []InstructorGrantResponse {
	responses := make([]InstructorGrantResponse, 0, len(grants))
	for _, grant := range grants {
		responses = append(responses, NewInstructorGrantResponse(grant))
	}

	return responses
}
