package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// FeedbackSubmitRequest describes the payload for rating a completed request.
type FeedbackSubmitRequest struct {
	Rating             int      `json:"rating" validate:"required,min=1,max=5"`
	Feedback           string   `json:"feedback"`
	ServiceQuality     *int     `json:"service_quality" validate:"omitempty,min=1,max=5"`
	Punctuality        *int     `json:"punctuality" validate:"omitempty,min=1,max=5"`
	Communication      *int     `json:"communication" validate:"omitempty,min=1,max=5"`
	WouldRecommend     *bool    `json:"would_recommend"`
	AdditionalComments string   `json:"additional_comments"`
	ServicesNeeded     []string `json:"services_needed"`
	FeaturesNeeded     []string `json:"features_needed"`
}

// Recommend resolves the tri-state flag; absence means yes.
func (r FeedbackSubmitRequest) Recommend() bool {
	return r.WouldRecommend == nil || *r.WouldRecommend
}

// GeneralFeedbackRequest is unsolicited feedback not tied to any request.
// Only the rating bounds apply; the sender and subject are both optional.
type GeneralFeedbackRequest struct {
	FeedbackSubmitRequest

	SeniorID  *uint `json:"senior_id"`
	StudentID *uint `json:"student_id"`
}

// FeedbackResponse is the serialized representation returned to API clients.
type FeedbackResponse struct {
	ID                 uint      `json:"id"`
	RequestID          *uint     `json:"request_id"`
	SeniorID           *uint     `json:"senior_id"`
	StudentID          *uint     `json:"student_id"`
	Rating             int       `json:"rating"`
	Feedback           string    `json:"feedback"`
	ServiceQuality     *int      `json:"service_quality"`
	Punctuality        *int      `json:"punctuality"`
	Communication      *int      `json:"communication"`
	WouldRecommend     bool      `json:"would_recommend"`
	AdditionalComments string    `json:"additional_comments"`
	ServicesNeeded     []string  `json:"services_needed,omitempty"`
	FeaturesNeeded     []string  `json:"features_needed,omitempty"`
	CreatedAt          time.Time `json:"created_at"`

	Request *RequestSummary `json:"request,omitempty"`
	Senior  *PartySummary   `json:"senior,omitempty"`
}

// RequestSummary is the display subset of a request joined onto feedback.
type RequestSummary struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	CompletedAt *time.Time `json:"completed_at"`
}

// FeedbackStats aggregates a student's received feedback. Sub-rating averages
// only cover entries where the sub-rating was given and are 0 when none was.
type FeedbackStats struct {
	TotalFeedback         int     `json:"total_feedback"`
	AverageRating         float64 `json:"average_rating"`
	AverageServiceQuality float64 `json:"average_service_quality"`
	AveragePunctuality    float64 `json:"average_punctuality"`
	AverageCommunication  float64 `json:"average_communication"`
	RecommendationRate    float64 `json:"recommendation_rate"`
}

// StudentFeedbackResponse pairs a student's feedback entries with aggregates.
type StudentFeedbackResponse struct {
	Feedback []FeedbackResponse `json:"feedback"`
	Stats    FeedbackStats      `json:"stats"`
}

// NewFeedbackResponse converts a model into a DTO.
func NewFeedbackResponse(model models.Feedback) FeedbackResponse {
	response := FeedbackResponse{
		ID:                 model.ID,
		RequestID:          model.RequestID,
		SeniorID:           model.SeniorID,
		StudentID:          model.StudentID,
		Rating:             model.Rating,
		Feedback:           model.Comment,
		ServiceQuality:     model.ServiceQuality,
		Punctuality:        model.Punctuality,
		Communication:      model.Communication,
		WouldRecommend:     model.WouldRecommend,
		AdditionalComments: model.AdditionalComments,
		ServicesNeeded:     decodeStringList(model.ServicesNeeded),
		FeaturesNeeded:     decodeStringList(model.FeaturesNeeded),
		CreatedAt:          model.CreatedAt,
	}

	if model.Request != nil {
		response.Request = &RequestSummary{
			ID:          model.Request.ID,
			Title:       model.Request.Title,
			Type:        string(model.Request.Type),
			CompletedAt: model.Request.CompletedAt,
		}
	}
	if model.Senior != nil {
		response.Senior = &PartySummary{
			ID:       model.Senior.ID,
			FullName: model.Senior.FullName,
			Email:    model.Senior.Email,
		}
	}

	return response
}

// NewFeedbackResponseSlice converts a slice of models into DTOs.
func NewFeedbackResponseSlice(entries []models.Feedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewFeedbackResponse(entry))
	}

	return responses
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}

	return list
}
