package service

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/dto"
	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/repository"
)

// StudentService manages volunteer profiles and the stats maintenance hooks.
type StudentService interface {
	Register(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	SavePushToken(ctx context.Context, id uint, payload dto.PushTokenRequest) error
	VolunteerStats(ctx context.Context, id uint) (dto.VolunteerStatsResponse, error)
	ResetAllStats(ctx context.Context) (int64, error)
}

type studentService struct {
	students  repository.StudentRepository
	requests  repository.RequestRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService builds the volunteer profile service.
func NewStudentService(students repository.StudentRepository, requests repository.RequestRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		requests:  requests,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Register(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		FullName:      payload.FullName,
		Email:         payload.Email,
		PhoneNumber:   payload.PhoneNumber,
		College:       payload.College,
		Description:   payload.Description,
		TermsAccepted: payload.TermsAccepted,
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student registered")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	if payload.FullName != nil {
		student.FullName = *payload.FullName
	}
	if payload.Email != nil {
		student.Email = *payload.Email
	}
	if payload.PhoneNumber != nil {
		student.PhoneNumber = *payload.PhoneNumber
	}
	if payload.College != nil {
		student.College = *payload.College
	}
	if payload.Description != nil {
		student.Description = *payload.Description
	}

	if err := s.students.Update(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) SavePushToken(ctx context.Context, id uint, payload dto.PushTokenRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.students.SavePushToken(ctx, id, payload.PushToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	s.logger.Debug().Uint("student_id", id).Msg("push token registered")

	return nil
}

// VolunteerStats recounts a student's contribution from the retained completed
// requests instead of trusting the running counters. Durations are stored in
// minutes; hours and points derive from the summed minutes.
func (s *studentService) VolunteerStats(ctx context.Context, id uint) (dto.VolunteerStatsResponse, error) {
	if _, err := s.students.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VolunteerStatsResponse{}, ErrStudentNotFound
		}
		return dto.VolunteerStatsResponse{}, err
	}

	count, minutes, err := s.requests.CompletedTotalsByStudent(ctx, id)
	if err != nil {
		return dto.VolunteerStatsResponse{}, err
	}

	hours := float64(minutes) / 60.0

	return dto.VolunteerStatsResponse{
		CompletedTasks: count,
		Hours:          hours,
		Points:         int64(math.Round(hours * 100)),
	}, nil
}

// ResetAllStats zeroes every volunteer's counters. This is an administrative
// maintenance hook, not part of the lifecycle.
func (s *studentService) ResetAllStats(ctx context.Context) (int64, error) {
	affected, err := s.students.ResetAllStats(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Warn().Int64("students", affected).Msg("volunteer stats reset for all students")

	return affected, nil
}
