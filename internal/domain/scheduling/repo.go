package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// ListByDoctorBetween returns the doctor's appointments whose start falls
	// within [start, end], ordered chronologically.
	ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*Appointment, error)
	// ListByPatient returns a patient's appointments, ordered chronologically.
	// When after is non-nil, only appointments starting after it are returned.
	ListByPatient(ctx context.Context, patientID uuid.UUID, after *time.Time) ([]*Appointment, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]*Appointment, error)
	// ListNeedingReminders returns scheduled/confirmed appointments starting
	// at or before cutoff whose reminder has not been sent.
	ListNeedingReminders(ctx context.Context, cutoff time.Time) ([]*Appointment, error)
	// ListNeedingConfirmation returns scheduled appointments starting at or
	// before cutoff whose confirmation has not been sent.
	ListNeedingConfirmation(ctx context.Context, cutoff time.Time) ([]*Appointment, error)
}
