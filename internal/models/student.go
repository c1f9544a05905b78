package models

import (
	"math"
	"time"
)

// VolunteerStats accumulates a student's contribution. The three fields only
// ever move together: tasks and hours are incremented per completion and the
// score is recomputed from the new cumulative hours so rounding error cannot
// compound across many small tasks.
type VolunteerStats struct {
	CompletedTasks int     `gorm:"not null;default:0" json:"completed_tasks"`
	HoursServed    float64 `gorm:"type:decimal(10,2);not null;default:0" json:"hours_served"`
	Score          int     `gorm:"not null;default:0" json:"score"`
}

// ApplyCompletion returns the stats after crediting one completed task of the
// given duration. A nil or non-positive duration counts as DefaultTaskMinutes.
func (v VolunteerStats) ApplyCompletion(durationMinutes *int) VolunteerStats {
	minutes := DefaultTaskMinutes
	if durationMinutes != nil && *durationMinutes > 0 {
		minutes = *durationMinutes
	}

	hours := v.HoursServed + float64(minutes)/60.0

	return VolunteerStats{
		CompletedTasks: v.CompletedTasks + 1,
		HoursServed:    hours,
		Score:          int(math.Round(hours * 100)),
	}
}

// Student represents a volunteer who claims and fulfils service requests.
type Student struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	FullName      string `gorm:"size:120;not null" json:"full_name"`
	Email         string `gorm:"size:160;uniqueIndex;not null" json:"email"`
	PhoneNumber   string `gorm:"size:20;not null" json:"phone_number"`
	College       string `gorm:"size:255" json:"college"`
	Description   string `gorm:"type:text" json:"description"`
	PushToken     string `gorm:"size:255" json:"-"`
	TermsAccepted bool   `gorm:"not null;default:false" json:"terms_accepted"`

	VolunteerStats `gorm:"embedded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table used by the reference schema.
func (Student) TableName() string { return "students" }
