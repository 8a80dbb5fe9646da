package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/pkg/money"
	"gorm.io/gorm"
)

// Consultation is an outpatient consultation record
type Consultation struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	OPNumber         int          `gorm:"uniqueIndex;not null" json:"op_number"`
	FirstName        string       `gorm:"size:100;not null" json:"first_name"`
	LastName         string       `gorm:"size:100" json:"last_name"`
	Age              int          `json:"age"`
	Gender           string       `gorm:"size:20" json:"gender"`
	DateOfBirth      *time.Time   `gorm:"type:date" json:"dob,omitempty"`
	DoctorName       string       `gorm:"size:255" json:"consulting_doctor_name"`
	Observation      string       `gorm:"type:text" json:"observation"`
	ConsultantCharge money.Amount `gorm:"default:0" json:"consultant_charge"`
	ClinicCharge     money.Amount `gorm:"default:0" json:"clinic_charge"`
	TotalCharge      money.Amount `gorm:"default:0" json:"total_charge"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new consultation
func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Consultation model
func (Consultation) TableName() string {
	return "consultations"
}

// AgeOn returns the age in whole years at the given day
func AgeOn(dob, day time.Time) int {
	age := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
