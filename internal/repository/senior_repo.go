package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// SeniorRepository defines persistence operations for senior accounts.
type SeniorRepository interface {
	Create(ctx context.Context, senior *models.Senior) error
	GetByID(ctx context.Context, id uint) (models.Senior, error)
	Update(ctx context.Context, senior *models.Senior) error
	SavePushToken(ctx context.Context, id uint, token string) error
}

type seniorRepository struct {
	db *gorm.DB
}

// NewSeniorRepository instantiates a GORM-backed repository.
func NewSeniorRepository(db *gorm.DB) SeniorRepository {
	return &seniorRepository{db: db}
}

func (r *seniorRepository) Create(ctx context.Context, senior *models.Senior) error {
	return r.db.WithContext(ctx).Create(senior).Error
}

func (r *seniorRepository) GetByID(ctx context.Context, id uint) (models.Senior, error) {
	var senior models.Senior
	if err := r.db.WithContext(ctx).First(&senior, id).Error; err != nil {
		return models.Senior{}, err
	}

	return senior, nil
}

func (r *seniorRepository) Update(ctx context.Context, senior *models.Senior) error {
	return r.db.WithContext(ctx).Save(senior).Error
}

func (r *seniorRepository) SavePushToken(ctx context.Context, id uint, token string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Senior{}).
		Where("id = ?", id).
		Update("push_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
