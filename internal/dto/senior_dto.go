package dto

import (
	"time"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// SeniorCreateRequest describes the payload for registering a senior profile.
type SeniorCreateRequest struct {
	FullName         string `json:"full_name" validate:"required,min=2"`
	Email            string `json:"email" validate:"required,email"`
	Age              int    `json:"age" validate:"required,min=1"`
	PoliceContact    string `json:"police_contact"`
	AmbulanceContact string `json:"ambulance_contact"`
	Phone1           string `json:"phone1"`
	Phone2           string `json:"phone2"`
	Phone3           string `json:"phone3"`
	TermsAccepted    bool   `json:"terms_accepted"`
}

// SeniorUpdateRequest describes a partial profile update.
type SeniorUpdateRequest struct {
	FullName         *string `json:"full_name" validate:"omitempty,min=2"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Age              *int    `json:"age" validate:"omitempty,min=1"`
	PoliceContact    *string `json:"police_contact"`
	AmbulanceContact *string `json:"ambulance_contact"`
	Phone1           *string `json:"phone1"`
	Phone2           *string `json:"phone2"`
	Phone3           *string `json:"phone3"`
}

// PushTokenRequest registers a device push address.
type PushTokenRequest struct {
	PushToken string `json:"push_token" validate:"required"`
}

// SeniorResponse is the serialized profile returned to API clients. Emergency
// contacts fall back to the national defaults when unset.
type SeniorResponse struct {
	ID               uint      `json:"id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Age              int       `json:"age"`
	PoliceContact    string    `json:"police_contact"`
	AmbulanceContact string    `json:"ambulance_contact"`
	Phone1           string    `json:"phone1"`
	Phone2           string    `json:"phone2"`
	Phone3           string    `json:"phone3"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewSeniorResponse converts a model into a DTO.
func NewSeniorResponse(model models.Senior) SeniorResponse {
	return SeniorResponse{
		ID:               model.ID,
		FullName:         model.FullName,
		Email:            model.Email,
		Age:              model.Age,
		PoliceContact:    model.EffectivePoliceContact(),
		AmbulanceContact: model.EffectiveAmbulanceContact(),
		Phone1:           model.Phone1,
		Phone2:           model.Phone2,
		Phone3:           model.Phone3,
		CreatedAt:        model.CreatedAt,
	}
}
