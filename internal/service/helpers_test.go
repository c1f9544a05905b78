package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// fakeSeniorRepo is an in-memory SeniorRepository.
type fakeSeniorRepo struct {
	mu      sync.Mutex
	seniors map[uint]models.Senior
	nextID  uint
}

func newFakeSeniorRepo() *fakeSeniorRepo {
	return &fakeSeniorRepo{seniors: make(map[uint]models.Senior)}
}

func (f *fakeSeniorRepo) Create(_ context.Context, senior *models.Senior) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	senior.ID = f.nextID
	senior.CreatedAt = time.Now()
	f.seniors[senior.ID] = *senior
	return nil
}

func (f *fakeSeniorRepo) GetByID(_ context.Context, id uint) (models.Senior, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	senior, ok := f.seniors[id]
	if !ok {
		return models.Senior{}, gorm.ErrRecordNotFound
	}
	return senior, nil
}

func (f *fakeSeniorRepo) Update(_ context.Context, senior *models.Senior) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seniors[senior.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.seniors[senior.ID] = *senior
	return nil
}

func (f *fakeSeniorRepo) SavePushToken(_ context.Context, id uint, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	senior, ok := f.seniors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	senior.PushToken = token
	f.seniors[id] = senior
	return nil
}

// fakeStudentRepo is an in-memory StudentRepository.
type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[uint]models.Student
	nextID   uint
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[uint]models.Student)}
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	student.ID = f.nextID
	student.CreatedAt = time.Now()
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.students[student.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) SavePushToken(_ context.Context, id uint, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	student.PushToken = token
	f.students[id] = student
	return nil
}

func (f *fakeStudentRepo) ResetAllStats(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, student := range f.students {
		student.VolunteerStats = models.VolunteerStats{}
		f.students[id] = student
	}
	return int64(len(f.students)), nil
}

func (f *fakeStudentRepo) credit(id uint, durationMinutes *int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.students[id]
	if !ok {
		return false
	}
	student.VolunteerStats = student.ApplyCompletion(durationMinutes)
	f.students[id] = student
	return true
}

// fakeRequestRepo is an in-memory RequestRepository mirroring the conditional
// write semantics of the real one.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uint]models.ServiceRequest
	nextID   uint

	seniors  *fakeSeniorRepo
	students *fakeStudentRepo
}

func newFakeRequestRepo(seniors *fakeSeniorRepo, students *fakeStudentRepo) *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[uint]models.ServiceRequest),
		seniors:  seniors,
		students: students,
	}
}

func (f *fakeRequestRepo) Create(_ context.Context, request *models.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	request.ID = f.nextID
	request.CreatedAt = time.Now()
	f.requests[request.ID] = *request
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id uint) (models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return models.ServiceRequest{}, gorm.ErrRecordNotFound
	}
	return request, nil
}

func (f *fakeRequestRepo) GetWithParties(ctx context.Context, id uint) (models.ServiceRequest, error) {
	request, err := f.GetByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}

	if f.seniors != nil {
		if senior, err := f.seniors.GetByID(ctx, request.SeniorID); err == nil {
			request.Senior = &senior
		}
	}
	if f.students != nil && request.AssignedStudentID != nil {
		if student, err := f.students.GetByID(ctx, *request.AssignedStudentID); err == nil {
			request.AssignedStudent = &student
		}
	}

	return request, nil
}

func (f *fakeRequestRepo) ListOpen(_ context.Context, filter repository.OpenPoolFilter) ([]models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var open []models.ServiceRequest
	for _, request := range f.requests {
		if request.Status != models.StatusOpen {
			continue
		}
		if filter.Type != "" && request.Type != filter.Type {
			continue
		}
		if filter.Priority != "" && request.Priority != filter.Priority {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(request.Location), strings.ToLower(filter.Location)) {
			continue
		}
		open = append(open, request)
	}

	sort.Slice(open, func(i, j int) bool {
		if open[i].Priority.Rank() != open[j].Priority.Rank() {
			return open[i].Priority.Rank() < open[j].Priority.Rank()
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	return open, nil
}

func (f *fakeRequestRepo) ListBySenior(_ context.Context, seniorID uint, status *models.RequestStatus) ([]models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []models.ServiceRequest
	for _, request := range f.requests {
		if request.SeniorID != seniorID {
			continue
		}
		if status != nil {
			if request.Status != *status {
				continue
			}
		} else if request.Status == models.StatusCompleted {
			continue
		}
		matched = append(matched, request)
	}

	return matched, nil
}

func (f *fakeRequestRepo) ListByStudent(_ context.Context, studentID uint, status *models.RequestStatus) ([]models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []models.ServiceRequest
	for _, request := range f.requests {
		if request.AssignedStudentID == nil || *request.AssignedStudentID != studentID {
			continue
		}
		if status != nil && request.Status != *status {
			continue
		}
		matched = append(matched, request)
	}

	return matched, nil
}

func (f *fakeRequestRepo) Claim(_ context.Context, id, studentID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if request.Status != models.StatusOpen {
		return repository.ErrRequestNotOpen
	}

	request.Status = models.StatusAssigned
	request.AssignedStudentID = &studentID
	request.AssignedAt = &at
	f.requests[id] = request

	return nil
}

func (f *fakeRequestRepo) Start(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if request.Status != models.StatusAssigned {
		return repository.ErrRequestNotAssigned
	}

	request.Status = models.StatusInProgress
	f.requests[id] = request

	return nil
}

func (f *fakeRequestRepo) Complete(_ context.Context, id uint, at time.Time) (models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return models.ServiceRequest{}, gorm.ErrRecordNotFound
	}
	if request.Status == models.StatusCompleted {
		return models.ServiceRequest{}, repository.ErrRequestCompleted
	}

	if request.AssignedStudentID != nil {
		if !f.students.credit(*request.AssignedStudentID, request.EstimatedDuration) {
			return models.ServiceRequest{}, gorm.ErrRecordNotFound
		}
	}

	request.Status = models.StatusCompleted
	request.CompletedAt = &at
	f.requests[id] = request

	return request, nil
}

func (f *fakeRequestRepo) Cancel(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if request.Status == models.StatusCompleted {
		return repository.ErrRequestCompleted
	}

	delete(f.requests, id)

	return nil
}

func (f *fakeRequestRepo) CompletedTotalsByStudent(_ context.Context, studentID uint) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count, minutes int64
	for _, request := range f.requests {
		if request.Status != models.StatusCompleted {
			continue
		}
		if request.AssignedStudentID == nil || *request.AssignedStudentID != studentID {
			continue
		}
		count++
		minutes += int64(request.DurationMinutes())
	}

	return count, minutes, nil
}

// fakeFeedbackRepo is an in-memory FeedbackRepository.
type fakeFeedbackRepo struct {
	mu      sync.Mutex
	entries []models.Feedback
	nextID  uint
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{}
}

func (f *fakeFeedbackRepo) Create(_ context.Context, feedback *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	feedback.ID = f.nextID
	feedback.CreatedAt = time.Now()
	f.entries = append(f.entries, *feedback)
	return nil
}

func (f *fakeFeedbackRepo) ExistsForRequest(_ context.Context, requestID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.entries {
		if entry.RequestID != nil && *entry.RequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFeedbackRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Feedback
	for _, entry := range f.entries {
		if entry.StudentID != nil && *entry.StudentID == studentID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

type pushRecord struct {
	Token string
	Title string
	Body  string
	Data  map[string]interface{}
}

// recordingPush captures push deliveries on a channel so tests can wait for
// the notifier goroutine.
type recordingPush struct {
	calls chan pushRecord
}

func newRecordingPush() *recordingPush {
	return &recordingPush{calls: make(chan pushRecord, 4)}
}

func (p *recordingPush) Send(_ context.Context, token, title, body string, data map[string]interface{}) error {
	p.calls <- pushRecord{Token: token, Title: title, Body: body, Data: data}
	return nil
}
