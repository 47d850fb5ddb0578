package prediction

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("prediction not found")

type Repository interface {
	// Upsert stores the prediction, replacing any existing row for the
	// same appointment.
	Upsert(ctx context.Context, p *NoShowPrediction) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*NoShowPrediction, error)
}
