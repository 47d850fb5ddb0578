package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Window is a half-open working interval [Start, End) in "HH:MM" clinic-local time.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Doctor maps to the doctor table. WorkingHours is keyed by lowercase
// weekday name ("monday" .. "sunday"); a missing day means the doctor
// does not see patients that day.
type Doctor struct {
	ID                  uuid.UUID         `db:"id" json:"id"`
	FirstName           string            `db:"first_name" json:"first_name"`
	LastName            string            `db:"last_name" json:"last_name"`
	Specialty           string            `db:"specialty" json:"specialty"`
	Phone               string            `db:"phone" json:"phone"`
	Email               string            `db:"email" json:"email"`
	WorkingHours        map[string]Window `db:"working_hours" json:"working_hours"`
	AppointmentDuration int               `db:"appointment_duration" json:"appointment_duration"`
	MaxPatientsPerDay   int               `db:"max_patients_per_day" json:"max_patients_per_day"`
	IsActive            bool              `db:"is_active" json:"is_active"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) FullName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}

// WorkingWindow resolves the doctor's window for the given weekday.
// The second return is false when the doctor is closed that day.
func (d *Doctor) WorkingWindow(weekday time.Weekday) (Window, bool) {
	w, ok := d.WorkingHours[strings.ToLower(weekday.String())]
	return w, ok
}

// ParseClock converts an "HH:MM" window bound into an absolute timestamp
// on the given date. Returns the zero time for malformed input.
func ParseClock(date time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}
