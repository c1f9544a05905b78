package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/models"
)

// Conflict errors returned when a conditional lifecycle write loses its race.
var (
	// ErrRequestNotOpen means the request exists but has already been claimed.
	ErrRequestNotOpen = errors.New("request is not open")
	// ErrRequestNotAssigned means the request is not in the assigned state.
	ErrRequestNotAssigned = errors.New("request is not assigned")
	// ErrRequestCompleted means the request already reached the completed state.
	ErrRequestCompleted = errors.New("request is already completed")
)

// Orders the open pool: urgent first, then by waiting time so long-waiting
// seniors are served before newer requests of the same priority.
const priorityRankExpr = "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END"

// OpenPoolFilter narrows the open pool for browsing students.
type OpenPoolFilter struct {
	Type     models.RequestType
	Priority models.RequestPriority
	Location string
}

// RequestRepository defines persistence operations for service requests. The
// lifecycle mutations are conditional writes: the WHERE clause carries the
// source state and the affected-row count decides the winner of any race.
type RequestRepository interface {
	Create(ctx context.Context, request *models.ServiceRequest) error
	GetByID(ctx context.Context, id uint) (models.ServiceRequest, error)
	GetWithParties(ctx context.Context, id uint) (models.ServiceRequest, error)
	ListOpen(ctx context.Context, filter OpenPoolFilter) ([]models.ServiceRequest, error)
	ListBySenior(ctx context.Context, seniorID uint, status *models.RequestStatus) ([]models.ServiceRequest, error)
	ListByStudent(ctx context.Context, studentID uint, status *models.RequestStatus) ([]models.ServiceRequest, error)
	Claim(ctx context.Context, id, studentID uint, at time.Time) error
	Start(ctx context.Context, id uint) error
	Complete(ctx context.Context, id uint, at time.Time) (models.ServiceRequest, error)
	Cancel(ctx context.Context, id uint) error
	CompletedTotalsByStudent(ctx context.Context, studentID uint) (int64, int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository instantiates a GORM-backed repository.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *models.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (models.ServiceRequest, error) {
	var request models.ServiceRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return models.ServiceRequest{}, err
	}

	return request, nil
}

func (r *requestRepository) GetWithParties(ctx context.Context, id uint) (models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := r.db.WithContext(ctx).
		Preload("Senior").
		Preload("AssignedStudent").
		First(&request, id).Error
	if err != nil {
		return models.ServiceRequest{}, err
	}

	return request, nil
}

func (r *requestRepository) ListOpen(ctx context.Context, filter OpenPoolFilter) ([]models.ServiceRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("Senior").
		Where("status = ?", models.StatusOpen)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}

	var requests []models.ServiceRequest
	if err := query.Order(priorityRankExpr).Order("created_at ASC").Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *requestRepository) ListBySenior(ctx context.Context, seniorID uint, status *models.RequestStatus) ([]models.ServiceRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("AssignedStudent").
		Where("senior_id = ?", seniorID)

	if status != nil {
		query = query.Where("status = ?", *status)
	} else {
		// A senior's recent activity is forward-looking; completed work only
		// shows up when asked for explicitly.
		query = query.Where("status <> ?", models.StatusCompleted)
	}

	var requests []models.ServiceRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *requestRepository) ListByStudent(ctx context.Context, studentID uint, status *models.RequestStatus) ([]models.ServiceRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("Senior").
		Where("assigned_student_id = ?", studentID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var requests []models.ServiceRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

// Claim performs the open→assigned transition as a single conditional write.
// Exactly one of any number of racing claims observes RowsAffected == 1.
func (r *requestRepository) Claim(ctx context.Context, id, studentID uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", id, models.StatusOpen).
		Updates(map[string]interface{}{
			"status":              models.StatusAssigned,
			"assigned_student_id": studentID,
			"assigned_at":         at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyMiss(ctx, id, ErrRequestNotOpen)
	}

	return nil
}

func (r *requestRepository) Start(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", id, models.StatusAssigned).
		Update("status", models.StatusInProgress)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyMiss(ctx, id, ErrRequestNotAssigned)
	}

	return nil
}

// Complete transitions the request to completed and credits the assigned
// student's volunteer stats in the same transaction. The status guard makes a
// repeated completion a no-op conflict instead of a double credit, and the
// stats update is an atomic in-place increment so two students' requests
// completing concurrently both land.
func (r *requestRepository) Complete(ctx context.Context, id uint, at time.Time) (models.ServiceRequest, error) {
	var request models.ServiceRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, id).Error; err != nil {
			return err
		}
		if request.Status == models.StatusCompleted {
			return ErrRequestCompleted
		}

		result := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status <> ?", id, models.StatusCompleted).
			Updates(map[string]interface{}{
				"status":       models.StatusCompleted,
				"completed_at": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRequestCompleted
		}

		if request.AssignedStudentID != nil {
			hours := float64(request.DurationMinutes()) / 60.0
			// hours_served on the right-hand side is the pre-update value, so
			// the score is recomputed from the new cumulative total.
			result = tx.Model(&models.Student{}).
				Where("id = ?", *request.AssignedStudentID).
				Updates(map[string]interface{}{
					"completed_tasks": gorm.Expr("completed_tasks + 1"),
					"hours_served":    gorm.Expr("hours_served + ?", hours),
					"score":           gorm.Expr("CAST(ROUND((hours_served + ?) * 100) AS INTEGER)", hours),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// A completed-but-uncredited request must never commit.
				return gorm.ErrRecordNotFound
			}
		}

		request.Status = models.StatusCompleted
		request.CompletedAt = &at
		return nil
	})
	if err != nil {
		return models.ServiceRequest{}, err
	}

	return request, nil
}

// Cancel retracts the request entirely. Cancellation carries no downstream
// value, so the record is hard-deleted rather than flagged.
func (r *requestRepository) Cancel(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("status <> ?", models.StatusCompleted).
		Delete(&models.ServiceRequest{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyMiss(ctx, id, ErrRequestCompleted)
	}

	return nil
}

func (r *requestRepository) CompletedTotalsByStudent(ctx context.Context, studentID uint) (int64, int64, error) {
	var totals struct {
		Count   int64
		Minutes int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.ServiceRequest{}).
		Select("COUNT(*) AS count, COALESCE(SUM(COALESCE(estimated_duration, ?)), 0) AS minutes", models.DefaultTaskMinutes).
		Where("assigned_student_id = ? AND status = ?", studentID, models.StatusCompleted).
		Scan(&totals).Error
	if err != nil {
		return 0, 0, err
	}

	return totals.Count, totals.Minutes, nil
}

// classifyMiss tells a vanished row apart from one in the wrong state after a
// conditional write touched nothing.
func (r *requestRepository) classifyMiss(ctx context.Context, id uint, conflict error) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ServiceRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	return conflict
}
