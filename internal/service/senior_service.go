package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/dto"
	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/repository"
)

// SeniorService manages senior profiles and their push registration.
type SeniorService interface {
	Register(ctx context.Context, payload dto.SeniorCreateRequest) (dto.SeniorResponse, error)
	Get(ctx context.Context, id uint) (dto.SeniorResponse, error)
	Update(ctx context.Context, id uint, payload dto.SeniorUpdateRequest) (dto.SeniorResponse, error)
	SavePushToken(ctx context.Context, id uint, payload dto.PushTokenRequest) error
}

type seniorService struct {
	seniors   repository.SeniorRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSeniorService builds the senior profile service.
func NewSeniorService(seniors repository.SeniorRepository, validate *validator.Validate, logger zerolog.Logger) SeniorService {
	return &seniorService{
		seniors:   seniors,
		validator: validate,
		logger:    logger.With().Str("component", "senior_service").Logger(),
	}
}

func (s *seniorService) Register(ctx context.Context, payload dto.SeniorCreateRequest) (dto.SeniorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SeniorResponse{}, err
	}

	senior := models.Senior{
		FullName:         payload.FullName,
		Email:            payload.Email,
		Age:              payload.Age,
		PoliceContact:    payload.PoliceContact,
		AmbulanceContact: payload.AmbulanceContact,
		Phone1:           payload.Phone1,
		Phone2:           payload.Phone2,
		Phone3:           payload.Phone3,
		TermsAccepted:    payload.TermsAccepted,
	}

	if err := s.seniors.Create(ctx, &senior); err != nil {
		return dto.SeniorResponse{}, err
	}

	s.logger.Info().Uint("senior_id", senior.ID).Msg("senior registered")

	return dto.NewSeniorResponse(senior), nil
}

func (s *seniorService) Get(ctx context.Context, id uint) (dto.SeniorResponse, error) {
	senior, err := s.seniors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SeniorResponse{}, ErrSeniorNotFound
		}
		return dto.SeniorResponse{}, err
	}

	return dto.NewSeniorResponse(senior), nil
}

func (s *seniorService) Update(ctx context.Context, id uint, payload dto.SeniorUpdateRequest) (dto.SeniorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SeniorResponse{}, err
	}

	senior, err := s.seniors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SeniorResponse{}, ErrSeniorNotFound
		}
		return dto.SeniorResponse{}, err
	}

	if payload.FullName != nil {
		senior.FullName = *payload.FullName
	}
	if payload.Email != nil {
		senior.Email = *payload.Email
	}
	if payload.Age != nil {
		senior.Age = *payload.Age
	}
	if payload.PoliceContact != nil {
		senior.PoliceContact = *payload.PoliceContact
	}
	if payload.AmbulanceContact != nil {
		senior.AmbulanceContact = *payload.AmbulanceContact
	}
	if payload.Phone1 != nil {
		senior.Phone1 = *payload.Phone1
	}
	if payload.Phone2 != nil {
		senior.Phone2 = *payload.Phone2
	}
	if payload.Phone3 != nil {
		senior.Phone3 = *payload.Phone3
	}

	if err := s.seniors.Update(ctx, &senior); err != nil {
		return dto.SeniorResponse{}, err
	}

	return dto.NewSeniorResponse(senior), nil
}

func (s *seniorService) SavePushToken(ctx context.Context, id uint, payload dto.PushTokenRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.seniors.SavePushToken(ctx, id, payload.PushToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSeniorNotFound
		}
		return err
	}

	s.logger.Debug().Uint("senior_id", id).Msg("push token registered")

	return nil
}
