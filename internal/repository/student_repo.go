package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// StudentRepository defines persistence operations for volunteer students.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	SavePushToken(ctx context.Context, id uint, token string) error
	ResetAllStats(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates a GORM-backed repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) SavePushToken(ctx context.Context, id uint, token string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
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

// ResetAllStats is the administrative override behind the bulk-reset tooling.
// Volunteer stats are otherwise only ever written by the completion
// transition.
func (r *studentRepository) ResetAllStats(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"completed_tasks": 0,
			"hours_served":    0,
			"score":           0,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
