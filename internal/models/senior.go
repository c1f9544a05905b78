package models

import "time"

// Emergency numbers substituted when a senior leaves a contact blank.
const (
	DefaultPoliceContact    = "100"
	DefaultAmbulanceContact = "108"
)

// Senior represents a person requesting assistance.
type Senior struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	FullName         string `gorm:"size:120;not null" json:"full_name"`
	Email            string `gorm:"size:160;uniqueIndex;not null" json:"email"`
	Age              int    `gorm:"not null" json:"age"`
	PoliceContact    string `gorm:"size:20" json:"police_contact"`
	AmbulanceContact string `gorm:"size:20" json:"ambulance_contact"`
	Phone1           string `gorm:"size:20" json:"phone1"`
	Phone2           string `gorm:"size:20" json:"phone2"`
	Phone3           string `gorm:"size:20" json:"phone3"`
	PushToken        string `gorm:"size:255" json:"-"`
	TermsAccepted    bool   `gorm:"not null;default:false" json:"terms_accepted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table used by the reference schema.
func (Senior) TableName() string { return "seniors" }

// EffectivePoliceContact falls back to the national default.
func (s Senior) EffectivePoliceContact() string {
	if s.PoliceContact != "" {
		return s.PoliceContact
	}
	return DefaultPoliceContact
}

// EffectiveAmbulanceContact falls back to the national default.
func (s Senior) EffectiveAmbulanceContact() string {
	if s.AmbulanceContact != "" {
		return s.AmbulanceContact
	}
	return DefaultAmbulanceContact
}
