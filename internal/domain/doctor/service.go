package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAppointmentDuration = 30
	DefaultMaxPatientsPerDay   = 20
)

var validWeekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if d.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if err := validateWorkingHours(d.WorkingHours); err != nil {
		return err
	}
	if d.AppointmentDuration == 0 {
		d.AppointmentDuration = DefaultAppointmentDuration
	}
	if d.AppointmentDuration < 0 {
		return fmt.Errorf("appointment_duration must be positive")
	}
	if d.MaxPatientsPerDay == 0 {
		d.MaxPatientsPerDay = DefaultMaxPatientsPerDay
	}
	d.IsActive = true
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if err := validateWorkingHours(d.WorkingHours); err != nil {
		return err
	}
	if d.AppointmentDuration < 0 {
		return fmt.Errorf("appointment_duration must be positive")
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func validateWorkingHours(hours map[string]Window) error {
	for day, w := range hours {
		if !validWeekdays[day] {
			return fmt.Errorf("invalid weekday: %s", day)
		}
		start, err := time.Parse("15:04", w.Start)
		if err != nil {
			return fmt.Errorf("invalid start %q for %s", w.Start, day)
		}
		end, err := time.Parse("15:04", w.End)
		if err != nil {
			return fmt.Errorf("invalid end %q for %s", w.End, day)
		}
		if !end.After(start) {
			return fmt.Errorf("window for %s must end after it starts", day)
		}
	}
	return nil
}
