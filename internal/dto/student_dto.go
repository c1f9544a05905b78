package dto

import (
	"time"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// StudentCreateRequest describes the payload for registering a volunteer.
type StudentCreateRequest struct {
	FullName      string `json:"full_name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	PhoneNumber   string `json:"phone_number" validate:"required"`
	College       string `json:"college"`
	Description   string `json:"description"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// StudentUpdateRequest describes a partial profile update. Volunteer stats
// are deliberately absent: they move only through the completion transition.
type StudentUpdateRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	College     *string `json:"college"`
	Description *string `json:"description"`
}

// StudentResponse is the serialized profile returned to API clients.
type StudentResponse struct {
	ID             uint      `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	College        string    `json:"college"`
	Description    string    `json:"description"`
	CompletedTasks int       `json:"completed_tasks"`
	HoursServed    float64   `json:"hours_served"`
	Score          int       `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}

// VolunteerStatsResponse is a recount of a student's contribution derived
// from the retained completed requests.
type VolunteerStatsResponse struct {
	CompletedTasks int64   `json:"completed_tasks"`
	Hours          float64 `json:"hours"`
	Points         int64   `json:"points"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:             model.ID,
		FullName:       model.FullName,
		Email:          model.Email,
		PhoneNumber:    model.PhoneNumber,
		College:        model.College,
		Description:    model.Description,
		CompletedTasks: model.CompletedTasks,
		HoursServed:    model.HoursServed,
		Score:          model.Score,
		CreatedAt:      model.CreatedAt,
	}
}
