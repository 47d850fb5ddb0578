package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Completed, cancelled, and no_show are terminal;
// rescheduled is re-entrant and treated like scheduled for later transitions.
const (
	StatusScheduled   = "scheduled"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no_show"
	StatusRescheduled = "rescheduled"
)

// occupyingStatuses are the statuses that hold a slot. Cancelled, no-show,
// and completed appointments free their slot for reuse.
var occupyingStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true,
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	PatientID           uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID            uuid.UUID `db:"doctor_id" json:"doctor_id"`
	AppointmentDatetime time.Time `db:"appointment_datetime" json:"appointment_datetime"`
	Duration            int       `db:"duration" json:"duration"`
	Status              string    `db:"status" json:"status"`
	AppointmentType     string    `db:"appointment_type" json:"appointment_type"`
	Notes               string    `db:"notes" json:"notes"`
	InsuranceVerified   bool      `db:"insurance_verified" json:"insurance_verified"`
	ReminderSent        bool      `db:"reminder_sent" json:"reminder_sent"`
	ConfirmationSent    bool      `db:"confirmation_sent" json:"confirmation_sent"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Occupies reports whether the appointment currently holds its slot.
func (a *Appointment) Occupies() bool {
	return occupyingStatuses[a.Status]
}

// Statistics aggregates appointment outcomes over a date range.
type Statistics struct {
	TotalAppointments int     `json:"total_appointments"`
	Scheduled         int     `json:"scheduled"`
	Confirmed         int     `json:"confirmed"`
	Completed         int     `json:"completed"`
	Cancelled         int     `json:"cancelled"`
	NoShows           int     `json:"no_shows"`
	Rescheduled       int     `json:"rescheduled"`
	NoShowRate        float64 `json:"no_show_rate"`
}
