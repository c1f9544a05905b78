package models

import "time"

// DefaultTaskMinutes is assumed when a request carries no duration estimate.
const DefaultTaskMinutes = 60

// RequestType enumerates the categories of assistance a senior can ask for.
type RequestType string

// Supported request types.
const (
	TypeHospital           RequestType = "hospital"
	TypeRides              RequestType = "rides"
	TypeGroceries          RequestType = "groceries"
	TypeCompanionship      RequestType = "companionship"
	TypeTechnologyHelp     RequestType = "technology_help"
	TypeHouseholdTasks     RequestType = "household_tasks"
	TypeGovernmentServices RequestType = "government_services"
	TypeMedicines          RequestType = "medicines"
	TypeReadingWriting     RequestType = "reading_writing"
	TypeOther              RequestType = "other"
)

var requestTypes = map[RequestType]struct{}{
	TypeHospital:           {},
	TypeRides:              {},
	TypeGroceries:          {},
	TypeCompanionship:      {},
	TypeTechnologyHelp:     {},
	TypeHouseholdTasks:     {},
	TypeGovernmentServices: {},
	TypeMedicines:          {},
	TypeReadingWriting:     {},
	TypeOther:              {},
}

// Valid reports whether the type belongs to the closed enumeration.
func (t RequestType) Valid() bool {
	_, ok := requestTypes[t]
	return ok
}

// RequestPriority orders requests in the open pool.
type RequestPriority string

// Supported priorities, lowest to highest.
const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// Valid reports whether the priority belongs to the closed enumeration.
func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Rank returns the sort position of the priority, 0 being the most urgent.
func (p RequestPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// RequestStatus is the lifecycle state of a service request. Cancellation is a
// command, not a stored state: cancelled requests are deleted outright.
type RequestStatus string

// Lifecycle states.
const (
	StatusOpen       RequestStatus = "open"
	StatusAssigned   RequestStatus = "assigned"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
)

// Terminal reports whether the state admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted
}

// ServiceRequest is a unit of requested assistance owned by a senior and
// optionally claimed by exactly one student.
type ServiceRequest struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	SeniorID          uint            `gorm:"index;not null" json:"senior_id"`
	Title             string          `gorm:"size:255;not null" json:"title"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	Type              RequestType     `gorm:"size:32;index;not null" json:"type"`
	Priority          RequestPriority `gorm:"size:16;not null;default:medium" json:"priority"`
	Location          string          `gorm:"size:255" json:"location"`
	PreferredTime     string          `gorm:"size:100" json:"preferred_time"`
	EstimatedDuration *int            `json:"estimated_duration"`
	Status            RequestStatus   `gorm:"size:16;index;not null;default:open" json:"status"`
	AssignedStudentID *uint           `gorm:"index" json:"assigned_student_id"`
	AssignedAt        *time.Time      `json:"assigned_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	RequesterName     string          `gorm:"size:255" json:"requester_name"`
	RequesterPhone    string          `gorm:"size:20" json:"requester_phone"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Senior          *Senior  `gorm:"foreignKey:SeniorID" json:"-"`
	AssignedStudent *Student `gorm:"foreignKey:AssignedStudentID" json:"-"`
}

// TableName pins the table used by the reference schema.
func (ServiceRequest) TableName() string { return "service_requests" }

// DurationMinutes returns the estimated duration, defaulting when absent.
func (r ServiceRequest) DurationMinutes() int {
	if r.EstimatedDuration != nil && *r.EstimatedDuration > 0 {
		return *r.EstimatedDuration
	}
	return DefaultTaskMinutes
}
