package notification

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medassist/medassist/internal/domain/doctor"
	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/prediction"
	"github.com/medassist/medassist/internal/domain/scheduling"
	"github.com/medassist/medassist/internal/domain/settings"
)

// datetimeFormat is how appointment times read in patient-facing messages.
const datetimeFormat = "January 2, 2006 at 3:04 PM"

// urgentRiskScore is the predicted no-show score above which reminders switch
// to the urgent template variant.
const urgentRiskScore = 0.7

type AppointmentService interface {
	Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	AppointmentsNeedingReminders(ctx context.Context, hoursBefore int) ([]*scheduling.Appointment, error)
	AppointmentsNeedingConfirmation(ctx context.Context, hoursBefore int) ([]*scheduling.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
	MarkConfirmationSent(ctx context.Context, id uuid.UUID) error
}

type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type DoctorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

type PredictionService interface {
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*prediction.NoShowPrediction, error)
	HighRiskAppointments(ctx context.Context, start, end time.Time, threshold float64) ([]*prediction.HighRiskAppointment, error)
}

type SettingsService interface {
	Get(ctx context.Context) (*settings.ClinicSettings, error)
}

// Dispatcher renders and sends clinic messages for appointment events,
// choosing the channel from the patient's communication preference. Voice
// preference falls back to SMS text.
type Dispatcher struct {
	manager      *Manager
	appointments AppointmentService
	patients     PatientStore
	doctors      DoctorStore
	predictions  PredictionService
	settings     SettingsService
	log          zerolog.Logger
	now          func() time.Time
}

func NewDispatcher(manager *Manager, appointments AppointmentService, patients PatientStore,
	doctors DoctorStore, predictions PredictionService, clinicSettings SettingsService,
	log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		manager:      manager,
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		predictions:  predictions,
		settings:     clinicSettings,
		log:          log,
		now:          time.Now,
	}
}

// channel resolves the delivery channel and recipient for a patient.
func (d *Dispatcher) channel(p *patient.Patient) (string, string) {
	if p.PreferredCommunication == "email" {
		return "", p.Email
	}
	return "-sms", p.Phone
}

func (d *Dispatcher) templateData(ctx context.Context, p *patient.Patient, doc *doctor.Doctor, a *scheduling.Appointment) map[string]string {
	clinicName := "Medical Clinic"
	if s, err := d.settings.Get(ctx); err == nil && s.ClinicName != "" {
		clinicName = s.ClinicName
	}
	return map[string]string{
		"patient_name":     p.FirstName,
		"doctor_name":      doc.FirstName + " " + doc.LastName,
		"doctor_last_name": doc.LastName,
		"specialty":        doc.Specialty,
		"datetime":         a.AppointmentDatetime.Format(datetimeFormat),
		"duration":         strconv.Itoa(a.Duration),
		"type":             a.AppointmentType,
		"clinic_name":      clinicName,
	}
}

// lookup fetches the appointment with its patient and doctor. A nil
// appointment (with nil error) means some party is missing and the send
// should report failure without erroring.
func (d *Dispatcher) lookup(ctx context.Context, appointmentID uuid.UUID) (*scheduling.Appointment, *patient.Patient, *doctor.Doctor) {
	a, err := d.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, nil, nil
	}
	p, err := d.patients.GetByID(ctx, a.PatientID)
	if err != nil {
		return nil, nil, nil
	}
	doc, err := d.doctors.GetByID(ctx, a.DoctorID)
	if err != nil {
		return nil, nil, nil
	}
	return a, p, doc
}

// SendReminder sends an appointment reminder, switching to the urgent
// template for predicted high-risk no-shows. Already-reminded appointments
// succeed without sending again.
func (d *Dispatcher) SendReminder(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	a, p, doc := d.lookup(ctx, appointmentID)
	if a == nil {
		return false, nil
	}
	if a.ReminderSent {
		return true, nil
	}

	templateID := "appointment-reminder"
	if pred, err := d.predictions.GetByAppointment(ctx, appointmentID); err == nil && pred.RiskScore > urgentRiskScore {
		templateID = "appointment-reminder-urgent"
	}
	suffix, recipient := d.channel(p)

	if _, err := d.manager.SendFromTemplate(ctx, templateID+suffix, d.templateData(ctx, p, doc, a), recipient); err != nil {
		return false, nil
	}
	if err := d.appointments.MarkReminderSent(ctx, appointmentID); err != nil {
		return false, err
	}
	return true, nil
}

// SendConfirmation asks the patient to confirm an upcoming appointment.
func (d *Dispatcher) SendConfirmation(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	a, p, doc := d.lookup(ctx, appointmentID)
	if a == nil {
		return false, nil
	}
	if a.ConfirmationSent {
		return true, nil
	}

	suffix, recipient := d.channel(p)
	if _, err := d.manager.SendFromTemplate(ctx, "appointment-confirmation"+suffix, d.templateData(ctx, p, doc, a), recipient); err != nil {
		return false, nil
	}
	if err := d.appointments.MarkConfirmationSent(ctx, appointmentID); err != nil {
		return false, err
	}
	return true, nil
}

// SendCancellation notifies the patient that an appointment was cancelled.
func (d *Dispatcher) SendCancellation(ctx context.Context, appointmentID uuid.UUID, reason string) (bool, error) {
	a, p, doc := d.lookup(ctx, appointmentID)
	if a == nil {
		return false, nil
	}

	data := d.templateData(ctx, p, doc, a)
	data["reason_line"] = ""
	if reason != "" {
		data["reason_line"] = "Reason: " + reason + "\n\n"
	}

	suffix, recipient := d.channel(p)
	if _, err := d.manager.SendFromTemplate(ctx, "appointment-cancellation"+suffix, data, recipient); err != nil {
		return false, nil
	}
	return true, nil
}

// SendNoShowFollowUp reaches out after a missed appointment. Only no-show
// appointments qualify.
func (d *Dispatcher) SendNoShowFollowUp(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	a, p, doc := d.lookup(ctx, appointmentID)
	if a == nil || a.Status != scheduling.StatusNoShow {
		return false, nil
	}

	suffix, recipient := d.channel(p)
	if _, err := d.manager.SendFromTemplate(ctx, "no-show-followup"+suffix, d.templateData(ctx, p, doc, a), recipient); err != nil {
		return false, nil
	}
	return true, nil
}

// ProcessResult tallies one reminder sweep.
type ProcessResult struct {
	RemindersSent        int `json:"reminders_sent"`
	ConfirmationsSent    int `json:"confirmations_sent"`
	ReminderFailures     int `json:"reminder_failures"`
	ConfirmationFailures int `json:"confirmation_failures"`
	HighRiskAppointments int `json:"high_risk_appointments"`
}

// ProcessScheduledReminders sends reminders and confirmation requests for
// every appointment inside the clinic's lead windows. Sent flags are
// monotonic, so re-running the sweep does not re-send.
func (d *Dispatcher) ProcessScheduledReminders(ctx context.Context) (*ProcessResult, error) {
	clinicSettings, err := d.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	needingReminders, err := d.appointments.AppointmentsNeedingReminders(ctx, clinicSettings.ReminderHoursBefore)
	if err != nil {
		return nil, err
	}
	needingConfirmation, err := d.appointments.AppointmentsNeedingConfirmation(ctx, clinicSettings.ConfirmationHoursBefore)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{}
	for _, a := range needingReminders {
		ok, err := d.SendReminder(ctx, a.ID)
		if err != nil || !ok {
			result.ReminderFailures++
			d.log.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("reminder send failed")
			continue
		}
		result.RemindersSent++
	}
	for _, a := range needingConfirmation {
		ok, err := d.SendConfirmation(ctx, a.ID)
		if err != nil || !ok {
			result.ConfirmationFailures++
			d.log.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("confirmation send failed")
			continue
		}
		result.ConfirmationsSent++
	}

	now := d.now()
	highRisk, err := d.predictions.HighRiskAppointments(ctx, now, now.AddDate(0, 0, 7), 0)
	if err != nil {
		d.log.Warn().Err(err).Msg("high-risk appointment scan failed")
	} else {
		result.HighRiskAppointments = len(highRisk)
	}
	return result, nil
}
