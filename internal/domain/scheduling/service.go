package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/doctor"
	"github.com/medassist/medassist/internal/domain/patient"
)

// PatientStore is the slice of the patient repository the scheduler needs.
type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	Update(ctx context.Context, p *patient.Patient) error
}

// DoctorStore is the slice of the doctor repository the scheduler needs.
type DoctorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

// doctorLocks serializes check-then-book sequences per doctor so two
// concurrent bookings cannot both pass the availability check for the
// same slot.
type doctorLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (l *doctorLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

type Service struct {
	appointments    Repository
	patients        PatientStore
	doctors         DoctorStore
	noShowThreshold int
	locks           doctorLocks
}

func NewService(appointments Repository, patients PatientStore, doctors DoctorStore, noShowThreshold int) *Service {
	if noShowThreshold < 1 {
		noShowThreshold = 3
	}
	return &Service{
		appointments:    appointments,
		patients:        patients,
		doctors:         doctors,
		noShowThreshold: noShowThreshold,
	}
}

// Book creates a scheduled appointment at the requested start time. The
// duration is the doctor's default; the requested time must be in the
// doctor's current availability for that date.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, at time.Time, appointmentType, notes string) (uuid.UUID, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return uuid.Nil, ErrPatientNotFound
	}
	doc, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return uuid.Nil, ErrDoctorNotFound
	}

	lock := s.locks.get(doctorID)
	lock.Lock()
	defer lock.Unlock()

	slots, err := s.AvailableSlots(ctx, doctorID, at, doc.AppointmentDuration)
	if err != nil {
		return uuid.Nil, err
	}
	if !slotAvailable(slots, at) {
		return uuid.Nil, ErrSlotUnavailable
	}

	if appointmentType == "" {
		appointmentType = "general"
	}
	a := &Appointment{
		PatientID:           patientID,
		DoctorID:            doctorID,
		AppointmentDatetime: at,
		Duration:            doc.AppointmentDuration,
		Status:              StatusScheduled,
		AppointmentType:     appointmentType,
		Notes:               notes,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

// Reschedule moves an appointment to a new start time. It returns false when
// the appointment is unknown or the new time is not available for the
// doctor, checked with the appointment's own duration. Reminder and
// confirmation flags are intentionally not reset.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newTime time.Time) (bool, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return false, nil
	}

	lock := s.locks.get(a.DoctorID)
	lock.Lock()
	defer lock.Unlock()

	slots, err := s.AvailableSlots(ctx, a.DoctorID, newTime, a.Duration)
	if err != nil {
		return false, err
	}
	if !slotAvailable(slots, newTime) {
		return false, nil
	}

	a.AppointmentDatetime = newTime
	a.Status = StatusRescheduled
	a.UpdatedAt = time.Now()
	if err := s.appointments.Update(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// Cancel marks an appointment cancelled and records the reason in its notes.
// A repeated cancel appends the reason again; callers own idempotency.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return false, nil
	}

	a.Status = StatusCancelled
	if reason != "" {
		a.Notes += "\nCancelled: " + reason
	} else {
		a.Notes += "\nCancelled"
	}
	a.UpdatedAt = time.Now()
	if err := s.appointments.Update(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// MarkNoShow records a missed appointment and bumps the patient's no-show
// counter. When the counter reaches the clinic threshold the patient is
// flagged high_risk; there is no automatic demotion back to active.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (bool, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return false, nil
	}

	a.Status = StatusNoShow
	a.UpdatedAt = time.Now()

	if p, err := s.patients.GetByID(ctx, a.PatientID); err == nil {
		p.NoShowCount++
		if p.NoShowCount >= s.noShowThreshold {
			p.Status = patient.StatusHighRisk
		}
		if err := s.patients.Update(ctx, p); err != nil {
			return false, err
		}
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// Complete marks an appointment completed, appends visit notes, and advances
// the patient's last_appointment to the visit time.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes string) (bool, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return false, nil
	}

	a.Status = StatusCompleted
	if notes != "" {
		a.Notes += "\nCompleted: " + notes
	} else {
		a.Notes += "\nCompleted"
	}
	a.UpdatedAt = time.Now()

	if p, err := s.patients.GetByID(ctx, a.PatientID); err == nil {
		t := a.AppointmentDatetime
		p.LastAppointment = &t
		if err := s.patients.Update(ctx, p); err != nil {
			return false, err
		}
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// Confirm moves a scheduled appointment to confirmed. Any other current
// status leaves the appointment untouched and returns false.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (bool, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return false, nil
	}
	if a.Status != StatusScheduled {
		return false, nil
	}
	a.Status = StatusConfirmed
	a.UpdatedAt = time.Now()
	if err := s.appointments.Update(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// MarkReminderSent sets the monotonic reminder flag.
func (s *Service) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.ReminderSent {
		return nil
	}
	a.ReminderSent = true
	a.UpdatedAt = time.Now()
	return s.appointments.Update(ctx, a)
}

// MarkConfirmationSent sets the monotonic confirmation flag.
func (s *Service) MarkConfirmationSent(ctx context.Context, id uuid.UUID) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.ConfirmationSent {
		return nil
	}
	a.ConfirmationSent = true
	a.UpdatedAt = time.Now()
	return s.appointments.Update(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// PatientAppointments lists a patient's appointments, optionally only those
// in the future.
func (s *Service) PatientAppointments(ctx context.Context, patientID uuid.UUID, upcomingOnly bool) ([]*Appointment, error) {
	var after *time.Time
	if upcomingOnly {
		now := time.Now()
		after = &now
	}
	return s.appointments.ListByPatient(ctx, patientID, after)
}

// DoctorSchedule lists a doctor's appointments for the whole calendar day.
func (s *Service) DoctorSchedule(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return s.appointments.ListByDoctorBetween(ctx, doctorID, startOfDay, endOfDay)
}

// AppointmentsNeedingReminders returns live appointments starting within the
// next hoursBefore hours whose reminder has not gone out.
func (s *Service) AppointmentsNeedingReminders(ctx context.Context, hoursBefore int) ([]*Appointment, error) {
	cutoff := time.Now().Add(time.Duration(hoursBefore) * time.Hour)
	return s.appointments.ListNeedingReminders(ctx, cutoff)
}

// AppointmentsNeedingConfirmation returns scheduled appointments starting
// within the next hoursBefore hours whose confirmation has not gone out.
func (s *Service) AppointmentsNeedingConfirmation(ctx context.Context, hoursBefore int) ([]*Appointment, error) {
	cutoff := time.Now().Add(time.Duration(hoursBefore) * time.Hour)
	return s.appointments.ListNeedingConfirmation(ctx, cutoff)
}

// AppointmentStatistics tallies appointment outcomes over [start, end].
// The no-show rate is a percentage of attempted appointments (completed,
// no-show, or cancelled).
func (s *Service) AppointmentStatistics(ctx context.Context, start, end time.Time) (*Statistics, error) {
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalAppointments: len(appts)}
	for _, a := range appts {
		switch a.Status {
		case StatusScheduled:
			stats.Scheduled++
		case StatusConfirmed:
			stats.Confirmed++
		case StatusCompleted:
			stats.Completed++
		case StatusCancelled:
			stats.Cancelled++
		case StatusNoShow:
			stats.NoShows++
		case StatusRescheduled:
			stats.Rescheduled++
		}
	}
	attempted := stats.Completed + stats.NoShows + stats.Cancelled
	if attempted > 0 {
		stats.NoShowRate = float64(stats.NoShows) / float64(attempted) * 100
	}
	return stats, nil
}
