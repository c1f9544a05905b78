package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// FeedbackRepository defines persistence operations for feedback entries.
// Entries are append-only: nothing in the core ever mutates or deletes them.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	ExistsForRequest(ctx context.Context, requestID uint) (bool, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates a GORM-backed repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) ExistsForRequest(ctx context.Context, requestID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *feedbackRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Feedback, error) {
	var feedback []models.Feedback
	err := r.db.WithContext(ctx).
		Preload("Request").
		Preload("Senior").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&feedback).Error
	if err != nil {
		return nil, err
	}

	return feedback, nil
}
