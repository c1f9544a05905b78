package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/dto"
	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/repository"
)

// Feedback gating errors.
var (
	// ErrFeedbackExists indicates the request was already rated.
	ErrFeedbackExists = errors.New("feedback already submitted for this request")
	// ErrRequestNotCompleted indicates feedback was attempted before the
	// request reached its terminal state.
	ErrRequestNotCompleted = errors.New("feedback requires a completed request")
	// ErrRequestUnassigned indicates the completed request has no student to
	// attribute the feedback to.
	ErrRequestUnassigned = errors.New("request has no assigned student")
)

const feedbackStatsKeyFormat = "carelink:feedback:student:%d"

// FeedbackService records post-completion ratings and serves per-student
// aggregates.
type FeedbackService interface {
	Submit(ctx context.Context, requestID uint, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error)
	SubmitGeneral(ctx context.Context, payload dto.GeneralFeedbackRequest) (dto.FeedbackResponse, error)
	ListForStudent(ctx context.Context, studentID uint) (dto.StudentFeedbackResponse, error)
}

type feedbackService struct {
	feedback  repository.FeedbackRepository
	requests  repository.RequestRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewFeedbackService builds the feedback subsystem. The cache client is
// optional; without it every aggregate read recomputes from the store.
func NewFeedbackService(feedback repository.FeedbackRepository, requests repository.RequestRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		feedback:  feedback,
		requests:  requests,
		cache:     cache,
		cacheTTL:  cacheTTL,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "feedback_service").Logger(),
	}
}

// Submit records feedback against a completed request. The request must exist,
// be completed, still carry its assigned student, and not have been rated
// before. Attribution comes from the request itself, never from the payload.
func (s *feedbackService) Submit(ctx context.Context, requestID uint, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrRequestNotFound
		}
		return dto.FeedbackResponse{}, err
	}
	if request.Status != models.StatusCompleted {
		return dto.FeedbackResponse{}, ErrRequestNotCompleted
	}
	if request.AssignedStudentID == nil {
		return dto.FeedbackResponse{}, ErrRequestUnassigned
	}

	exists, err := s.feedback.ExistsForRequest(ctx, requestID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}
	if exists {
		return dto.FeedbackResponse{}, ErrFeedbackExists
	}

	entry := s.buildEntry(payload)
	entry.RequestID = &request.ID
	entry.SeniorID = &request.SeniorID
	entry.StudentID = request.AssignedStudentID

	if err := s.feedback.Create(ctx, &entry); err != nil {
		return dto.FeedbackResponse{}, err
	}

	s.invalidateStats(ctx, *request.AssignedStudentID)
	s.logger.Info().Uint("request_id", requestID).Uint("student_id", *request.AssignedStudentID).Int("rating", entry.Rating).Msg("feedback recorded")

	return dto.NewFeedbackResponse(entry), nil
}

// SubmitGeneral records unsolicited feedback about the platform. It skips the
// request gating entirely and both parties are optional.
func (s *feedbackService) SubmitGeneral(ctx context.Context, payload dto.GeneralFeedbackRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	entry := s.buildEntry(payload.FeedbackSubmitRequest)
	entry.SeniorID = payload.SeniorID
	entry.StudentID = payload.StudentID

	if err := s.feedback.Create(ctx, &entry); err != nil {
		return dto.FeedbackResponse{}, err
	}

	if payload.StudentID != nil {
		s.invalidateStats(ctx, *payload.StudentID)
	}
	s.logger.Info().Int("rating", entry.Rating).Msg("general feedback recorded")

	return dto.NewFeedbackResponse(entry), nil
}

func (s *feedbackService) ListForStudent(ctx context.Context, studentID uint) (dto.StudentFeedbackResponse, error) {
	key := fmt.Sprintf(feedbackStatsKeyFormat, studentID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var response dto.StudentFeedbackResponse
			if json.Unmarshal([]byte(cached), &response) == nil {
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("feedback cache read failed")
		}
	}

	entries, err := s.feedback.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentFeedbackResponse{}, err
	}

	response := dto.StudentFeedbackResponse{
		Feedback: dto.NewFeedbackResponseSlice(entries),
		Stats:    aggregateFeedback(entries),
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("feedback cache write failed")
			}
		}
	}

	return response, nil
}

// buildEntry sanitizes the free-text fields and encodes the list fields. All
// user-authored text passes through the strict HTML policy before storage.
func (s *feedbackService) buildEntry(payload dto.FeedbackSubmitRequest) models.Feedback {
	return models.Feedback{
		Rating:             payload.Rating,
		Comment:            s.sanitizer.Sanitize(payload.Feedback),
		ServiceQuality:     payload.ServiceQuality,
		Punctuality:        payload.Punctuality,
		Communication:      payload.Communication,
		WouldRecommend:     payload.Recommend(),
		AdditionalComments: s.sanitizer.Sanitize(payload.AdditionalComments),
		ServicesNeeded:     s.encodeList(payload.ServicesNeeded),
		FeaturesNeeded:     s.encodeList(payload.FeaturesNeeded),
	}
}

func (s *feedbackService) encodeList(items []string) datatypes.JSON {
	if len(items) == 0 {
		return nil
	}

	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		cleaned = append(cleaned, s.sanitizer.Sanitize(item))
	}

	encoded, err := json.Marshal(cleaned)
	if err != nil {
		return nil
	}

	return datatypes.JSON(encoded)
}

func (s *feedbackService) invalidateStats(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf(feedbackStatsKeyFormat, studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("feedback cache invalidation failed")
	}
}

// aggregateFeedback folds the entries into display aggregates. Sub-rating
// averages only span the entries where that sub-rating was given; with none
// given the average is 0, not NaN.
func aggregateFeedback(entries []models.Feedback) dto.FeedbackStats {
	stats := dto.FeedbackStats{TotalFeedback: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	var ratingSum, recommended int
	quality := ratingAccumulator{}
	punctuality := ratingAccumulator{}
	communication := ratingAccumulator{}

	for _, entry := range entries {
		ratingSum += entry.Rating
		if entry.WouldRecommend {
			recommended++
		}
		quality.add(entry.ServiceQuality)
		punctuality.add(entry.Punctuality)
		communication.add(entry.Communication)
	}

	stats.AverageRating = roundTenth(float64(ratingSum) / float64(len(entries)))
	stats.AverageServiceQuality = quality.average()
	stats.AveragePunctuality = punctuality.average()
	stats.AverageCommunication = communication.average()
	stats.RecommendationRate = math.Round(float64(recommended) / float64(len(entries)) * 100)

	return stats
}

type ratingAccumulator struct {
	sum   int
	count int
}

func (a *ratingAccumulator) add(value *int) {
	if value == nil {
		return
	}
	a.sum += *value
	a.count++
}

func (a ratingAccumulator) average() float64 {
	if a.count == 0 {
		return 0
	}
	return roundTenth(float64(a.sum) / float64(a.count))
}

func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}
