package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusHighRisk = "high_risk"
)

// Insurance verification statuses.
const (
	InsuranceVerified = "verified"
	InsurancePending  = "pending"
	InsuranceExpired  = "expired"
	InsuranceInvalid  = "invalid"
)

// Patient maps to the patient table.
type Patient struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	FirstName              string     `db:"first_name" json:"first_name"`
	LastName               string     `db:"last_name" json:"last_name"`
	DateOfBirth            time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Phone                  string     `db:"phone" json:"phone"`
	Email                  string     `db:"email" json:"email"`
	Address                string     `db:"address" json:"address"`
	EmergencyContact       string     `db:"emergency_contact" json:"emergency_contact"`
	InsuranceProvider      string     `db:"insurance_provider" json:"insurance_provider"`
	InsuranceNumber        string     `db:"insurance_number" json:"insurance_number"`
	InsuranceStatus        string     `db:"insurance_status" json:"insurance_status"`
	Status                 string     `db:"status" json:"status"`
	NoShowCount            int        `db:"no_show_count" json:"no_show_count"`
	LastAppointment        *time.Time `db:"last_appointment" json:"last_appointment,omitempty"`
	PreferredCommunication string     `db:"preferred_communication" json:"preferred_communication"`
	Notes                  string     `db:"notes" json:"notes"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age returns the patient's age in whole years as of now.
func (p *Patient) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	if now.YearDay() < p.DateOfBirth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
