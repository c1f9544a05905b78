package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/dto"
	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/observability"
	"github.com/noah-isme/carelink-go-api/internal/repository"
)

// Lifecycle errors surfaced to callers. Conflicts are concurrency signals,
// distinct from validation mistakes: the right client reaction is to refresh
// and retry against fresh state.
var (
	// ErrRequestNotFound indicates the referenced request does not exist.
	ErrRequestNotFound = errors.New("request not found")
	// ErrSeniorNotFound indicates the referenced senior does not exist.
	ErrSeniorNotFound = errors.New("senior not found")
	// ErrStudentNotFound indicates the referenced student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrRequestNotOpen indicates the request was claimed by someone else first.
	ErrRequestNotOpen = errors.New("request is no longer available")
	// ErrInvalidTransition indicates the requested state change has no edge in
	// the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrRequestCompleted indicates the request already reached its terminal
	// retained state.
	ErrRequestCompleted = errors.New("request is already completed")
	// ErrInvalidFilter indicates a list filter value outside the enumeration.
	ErrInvalidFilter = errors.New("invalid filter value")
)

// RequestService is the lifecycle engine for service requests plus the
// role-specific read projections derived from request state.
type RequestService interface {
	Create(ctx context.Context, payload dto.RequestCreateRequest) (dto.RequestResponse, error)
	Accept(ctx context.Context, id uint, payload dto.RequestAcceptRequest) (dto.RequestResponse, error)
	Start(ctx context.Context, id uint) (dto.RequestResponse, error)
	Complete(ctx context.Context, id uint) (dto.RequestResponse, error)
	Cancel(ctx context.Context, id uint) error
	ListOpen(ctx context.Context, typeFilter, priorityFilter, locationFilter string) ([]dto.RequestResponse, error)
	ListBySenior(ctx context.Context, seniorID uint, statusFilter string) ([]dto.RequestResponse, error)
	ListByStudent(ctx context.Context, studentID uint, statusFilter string) ([]dto.RequestResponse, error)
}

type requestService struct {
	requests  repository.RequestRepository
	seniors   repository.SeniorRepository
	students  repository.StudentRepository
	notifier  *AcceptanceNotifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewRequestService builds the lifecycle engine.
func NewRequestService(requests repository.RequestRepository, seniors repository.SeniorRepository, students repository.StudentRepository, notifier *AcceptanceNotifier, validate *validator.Validate, logger zerolog.Logger) RequestService {
	return &requestService{
		requests:  requests,
		seniors:   seniors,
		students:  students,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "request_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/carelink-go-api/internal/service/request"),
		now:       time.Now,
	}
}

func (s *requestService) Create(ctx context.Context, payload dto.RequestCreateRequest) (dto.RequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RequestResponse{}, err
	}

	senior, err := s.seniors.GetByID(ctx, payload.SeniorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestResponse{}, ErrSeniorNotFound
		}
		return dto.RequestResponse{}, err
	}

	priority := models.RequestPriority(payload.Priority)
	if payload.Priority == "" {
		priority = models.PriorityMedium
	}

	request := models.ServiceRequest{
		SeniorID:          senior.ID,
		Title:             payload.Title,
		Description:       payload.Description,
		Type:              models.RequestType(payload.Type),
		Priority:          priority,
		Location:          payload.Location,
		PreferredTime:     payload.PreferredTime,
		EstimatedDuration: payload.EstimatedDuration,
		Status:            models.StatusOpen,
		RequesterName:     payload.RequesterName,
		RequesterPhone:    payload.RequesterPhone,
	}

	if err := s.requests.Create(ctx, &request); err != nil {
		return dto.RequestResponse{}, err
	}

	observability.RequestTransitions().WithLabelValues("created").Inc()
	s.logger.Info().Uint("request_id", request.ID).Str("type", string(request.Type)).Msg("service request created")

	request.Senior = &senior
	return dto.NewRequestResponse(request), nil
}

// Accept claims an open request for a student. The open→assigned edge is a
// single conditional write in the store, so two racing claims produce exactly
// one winner; the loser sees ErrRequestNotOpen. The acceptance alert is
// dispatched after the claim committed and never affects the outcome.
func (s *requestService) Accept(ctx context.Context, id uint, payload dto.RequestAcceptRequest) (dto.RequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RequestResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "requests.accept", trace.WithAttributes(
		attribute.Int("request.id", int(id)),
		attribute.Int("student.id", int(payload.StudentID)),
	))
	defer span.End()

	student, err := s.students.GetByID(spanCtx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestResponse{}, ErrStudentNotFound
		}
		return dto.RequestResponse{}, err
	}

	if err := s.requests.Claim(spanCtx, id, student.ID, s.now()); err != nil {
		span.RecordError(err)
		return dto.RequestResponse{}, s.translate(err)
	}

	request, err := s.requests.GetWithParties(spanCtx, id)
	if err != nil {
		return dto.RequestResponse{}, s.translate(err)
	}

	observability.RequestTransitions().WithLabelValues("assigned").Inc()
	s.logger.Info().Uint("request_id", id).Uint("student_id", student.ID).Msg("service request assigned")

	if s.notifier != nil && request.Senior != nil {
		go s.notifier.NotifyAccepted(request, *request.Senior, student)
	}

	return dto.NewRequestResponse(request), nil
}

func (s *requestService) Start(ctx context.Context, id uint) (dto.RequestResponse, error) {
	if err := s.requests.Start(ctx, id); err != nil {
		return dto.RequestResponse{}, s.translate(err)
	}

	request, err := s.requests.GetWithParties(ctx, id)
	if err != nil {
		return dto.RequestResponse{}, s.translate(err)
	}

	observability.RequestTransitions().WithLabelValues("in_progress").Inc()

	return dto.NewRequestResponse(request), nil
}

// Complete transitions the request to its retained terminal state and credits
// the assigned student's volunteer stats. The store applies both in one
// transaction, so a request can never commit as completed-but-uncredited, and
// a repeat call is rejected instead of double-counting.
func (s *requestService) Complete(ctx context.Context, id uint) (dto.RequestResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "requests.complete", trace.WithAttributes(
		attribute.Int("request.id", int(id)),
	))
	defer span.End()

	completed, err := s.requests.Complete(spanCtx, id, s.now())
	if err != nil {
		span.RecordError(err)
		return dto.RequestResponse{}, s.translate(err)
	}

	observability.RequestTransitions().WithLabelValues("completed").Inc()
	event := s.logger.Info().Uint("request_id", id)
	if completed.AssignedStudentID != nil {
		event = event.Uint("student_id", *completed.AssignedStudentID)
	}
	event.Msg("service request completed")

	request, err := s.requests.GetWithParties(spanCtx, id)
	if err != nil {
		return dto.RequestResponse{}, s.translate(err)
	}

	return dto.NewRequestResponse(request), nil
}

// Cancel retracts a non-terminal request entirely. Cancelled requests carry
// no stats and take no feedback, so the record is purged rather than flagged
// and is not discoverable anywhere afterwards.
func (s *requestService) Cancel(ctx context.Context, id uint) error {
	if err := s.requests.Cancel(ctx, id); err != nil {
		return s.translate(err)
	}

	observability.RequestTransitions().WithLabelValues("cancelled").Inc()
	s.logger.Info().Uint("request_id", id).Msg("service request cancelled and purged")

	return nil
}

func (s *requestService) ListOpen(ctx context.Context, typeFilter, priorityFilter, locationFilter string) ([]dto.RequestResponse, error) {
	filter := repository.OpenPoolFilter{Location: locationFilter}

	if typeFilter != "" {
		requestType := models.RequestType(typeFilter)
		if !requestType.Valid() {
			return nil, ErrInvalidFilter
		}
		filter.Type = requestType
	}
	if priorityFilter != "" {
		priority := models.RequestPriority(priorityFilter)
		if !priority.Valid() {
			return nil, ErrInvalidFilter
		}
		filter.Priority = priority
	}

	requests, err := s.requests.ListOpen(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewRequestResponseSlice(requests), nil
}

func (s *requestService) ListBySenior(ctx context.Context, seniorID uint, statusFilter string) ([]dto.RequestResponse, error) {
	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.ListBySenior(ctx, seniorID, status)
	if err != nil {
		return nil, err
	}

	return dto.NewRequestResponseSlice(requests), nil
}

func (s *requestService) ListByStudent(ctx context.Context, studentID uint, statusFilter string) ([]dto.RequestResponse, error) {
	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.ListByStudent(ctx, studentID, status)
	if err != nil {
		return nil, err
	}

	return dto.NewRequestResponseSlice(requests), nil
}

func (s *requestService) translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRequestNotFound
	case errors.Is(err, repository.ErrRequestNotOpen):
		return ErrRequestNotOpen
	case errors.Is(err, repository.ErrRequestNotAssigned):
		return ErrInvalidTransition
	case errors.Is(err, repository.ErrRequestCompleted):
		return ErrRequestCompleted
	default:
		return err
	}
}

func parseStatusFilter(raw string) (*models.RequestStatus, error) {
	if raw == "" {
		return nil, nil
	}

	status := models.RequestStatus(raw)
	switch status {
	case models.StatusOpen, models.StatusAssigned, models.StatusInProgress, models.StatusCompleted:
		return &status, nil
	default:
		return nil, ErrInvalidFilter
	}
}
