package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/doctor"
)

// AvailableSlots returns the ordered bookable start-times for a doctor on the
// given date. An unknown doctor, a day the doctor is closed, or a window too
// short for the duration all yield an empty result, not an error.
//
// A candidate conflicts with an occupied appointment when the absolute
// distance between their starts is less than the query duration. This is a
// start-distance check, not full interval overlap: it is only exact when all
// of the doctor's appointments share the query duration. Mixed-duration
// schedules can mis-classify slots near the boundary.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, durationMinutes int) ([]time.Time, error) {
	doc, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, nil
	}

	if durationMinutes <= 0 {
		durationMinutes = doc.AppointmentDuration
	}
	duration := time.Duration(durationMinutes) * time.Minute

	window, open := doc.WorkingWindow(date.Weekday())
	if !open {
		return nil, nil
	}
	startOfDay := doctor.ParseClock(date, window.Start)
	endOfDay := doctor.ParseClock(date, window.End)
	if startOfDay.IsZero() || endOfDay.IsZero() || !endOfDay.After(startOfDay) {
		return nil, nil
	}

	existing, err := s.appointments.ListByDoctorBetween(ctx, doctorID, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}
	var occupied []time.Time
	for _, a := range existing {
		if a.Occupies() {
			occupied = append(occupied, a.AppointmentDatetime)
		}
	}

	var slots []time.Time
	for candidate := startOfDay; !candidate.Add(duration).After(endOfDay); candidate = candidate.Add(duration) {
		if !conflicts(candidate, occupied, duration) {
			slots = append(slots, candidate)
		}
	}
	return slots, nil
}

func conflicts(candidate time.Time, occupied []time.Time, duration time.Duration) bool {
	for _, o := range occupied {
		d := candidate.Sub(o)
		if d < 0 {
			d = -d
		}
		if d < duration {
			return true
		}
	}
	return false
}

func slotAvailable(slots []time.Time, want time.Time) bool {
	for _, s := range slots {
		if s.Equal(want) {
			return true
		}
	}
	return false
}
