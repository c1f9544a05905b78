package dto

import (
	"time"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// RequestCreateRequest describes the payload for opening a service request.
type RequestCreateRequest struct {
	SeniorID          uint   `json:"senior_id" validate:"required"`
	Title             string `json:"title" validate:"required,min=3"`
	Description       string `json:"description" validate:"required"`
	Type              string `json:"type" validate:"required,oneof=hospital rides groceries companionship technology_help household_tasks government_services medicines reading_writing other"`
	Priority          string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Location          string `json:"location"`
	PreferredTime     string `json:"preferred_time"`
	EstimatedDuration *int   `json:"estimated_duration" validate:"omitempty,min=1"`
	RequesterName     string `json:"requester_name"`
	RequesterPhone    string `json:"requester_phone"`
}

// RequestAcceptRequest carries the claiming student.
type RequestAcceptRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
}

// RequestStatusUpdateRequest carries the target lifecycle state. Only the
// three forward commands are accepted; open and assigned are not reachable
// through this endpoint.
type RequestStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed cancelled"`
}

// PartySummary is the display subset of a senior or student joined onto a
// request.
type PartySummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// RequestResponse is the serialized representation returned to API clients.
type RequestResponse struct {
	ID                uint          `json:"id"`
	SeniorID          uint          `json:"senior_id"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Type              string        `json:"type"`
	Priority          string        `json:"priority"`
	Location          string        `json:"location"`
	PreferredTime     string        `json:"preferred_time"`
	EstimatedDuration *int          `json:"estimated_duration"`
	Status            string        `json:"status"`
	AssignedStudentID *uint         `json:"assigned_student_id"`
	AssignedAt        *time.Time    `json:"assigned_at"`
	CompletedAt       *time.Time    `json:"completed_at"`
	RequesterName     string        `json:"requester_name"`
	RequesterPhone    string        `json:"requester_phone"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Senior            *PartySummary `json:"senior,omitempty"`
	AssignedStudent   *PartySummary `json:"assigned_student,omitempty"`
}

// NewRequestResponse converts a model into a DTO.
func NewRequestResponse(model models.ServiceRequest) RequestResponse {
	response := RequestResponse{
		ID:                model.ID,
		SeniorID:          model.SeniorID,
		Title:             model.Title,
		Description:       model.Description,
		Type:              string(model.Type),
		Priority:          string(model.Priority),
		Location:          model.Location,
		PreferredTime:     model.PreferredTime,
		EstimatedDuration: model.EstimatedDuration,
		Status:            string(model.Status),
		AssignedStudentID: model.AssignedStudentID,
		AssignedAt:        model.AssignedAt,
		CompletedAt:       model.CompletedAt,
		RequesterName:     model.RequesterName,
		RequesterPhone:    model.RequesterPhone,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	if model.Senior != nil {
		response.Senior = &PartySummary{
			ID:       model.Senior.ID,
			FullName: model.Senior.FullName,
			Email:    model.Senior.Email,
		}
	}
	if model.AssignedStudent != nil {
		response.AssignedStudent = &PartySummary{
			ID:       model.AssignedStudent.ID,
			FullName: model.AssignedStudent.FullName,
			Email:    model.AssignedStudent.Email,
		}
	}

	return response
}

// NewRequestResponseSlice converts a slice of models into DTOs.
func NewRequestResponseSlice(requests []models.ServiceRequest) []RequestResponse {
	responses := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, NewRequestResponse(request))
	}

	return responses
}
