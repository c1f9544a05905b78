package models

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback is a post-completion rating a senior leaves about a student's
// service. RequestID is nullable so general feedback (not tied to a request)
// can be stored in the same table; at most one feedback may reference a given
// request.
type Feedback struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	RequestID *uint `gorm:"uniqueIndex" json:"request_id"`
	SeniorID  *uint `gorm:"index" json:"senior_id"`
	StudentID *uint `gorm:"index" json:"student_id"`

	Rating             int            `gorm:"not null;index" json:"rating"`
	Comment            string         `gorm:"type:text" json:"comment"`
	ServiceQuality     *int           `json:"service_quality"`
	Punctuality        *int           `json:"punctuality"`
	Communication      *int           `json:"communication"`
	WouldRecommend     bool           `gorm:"not null;default:true" json:"would_recommend"`
	AdditionalComments string         `gorm:"type:text" json:"additional_comments"`
	ServicesNeeded     datatypes.JSON `json:"services_needed"`
	FeaturesNeeded     datatypes.JSON `json:"features_needed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Request *ServiceRequest `gorm:"foreignKey:RequestID" json:"-"`
	Senior  *Senior         `gorm:"foreignKey:SeniorID" json:"-"`
	Student *Student        `gorm:"foreignKey:StudentID" json:"-"`
}

// TableName pins the table used by the reference schema.
func (Feedback) TableName() string { return "feedback" }
