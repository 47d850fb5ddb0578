package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medassist/medassist/internal/domain/doctor"
	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/prediction"
	"github.com/medassist/medassist/internal/domain/scheduling"
	"github.com/medassist/medassist/internal/domain/settings"
)

func TestTemplateRender(t *testing.T) {
	e := NewTemplateEngine()

	subject, body, err := e.Render("appointment-reminder", map[string]string{
		"patient_name": "Jane",
		"doctor_name":  "Sam Lee",
		"specialty":    "Cardiology",
		"datetime":     "June 11, 2024 at 10:00 AM",
		"duration":     "30",
		"type":         "general",
		"clinic_name":  "Downtown Clinic",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Appointment Reminder - Dr. Sam Lee" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Dear Jane,") || !strings.Contains(body, "Cardiology") {
		t.Errorf("body missing substitutions: %q", body)
	}
	if strings.Contains(body, "{{") {
		t.Errorf("body has unresolved placeholders: %q", body)
	}
}

func TestTemplateRenderMissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("appointment-reminder-sms", map[string]string{"datetime": "tomorrow"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body, "{{doctor_last_name}}") {
		t.Errorf("absent keys should stay as placeholders: %q", body)
	}
}

func TestTemplateRenderUnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("nope", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestManagerSendAndRetry(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	sms := &MockSMSSender{}
	m := NewManager(email, sms, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "jane@example.com", Subject: "hi", Body: "hello"}
	if err := m.Send(context.Background(), n); err == nil {
		t.Fatal("expected send failure")
	}
	if n.Status != "failed" || n.Error == "" {
		t.Errorf("failed send should be recorded: %+v", n)
	}

	email.ShouldFail = false
	if err := m.Retry(context.Background(), n.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	stored, err := m.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != "sent" || stored.SentAt == nil || stored.Error != "" {
		t.Errorf("retry should clear failure: %+v", stored)
	}
	if err := m.Retry(context.Background(), n.ID); err == nil {
		t.Error("retrying a sent notification should fail")
	}
}

func TestManagerStats(t *testing.T) {
	m := NewManager(&MockEmailSender{}, &MockSMSSender{ShouldFail: true, FailError: "no signal"}, NewTemplateEngine())

	_ = m.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "a@example.com", Body: "x"})
	_ = m.Send(context.Background(), &Notification{Type: TypeSMS, Recipient: "555-0100", Body: "y"})

	stats := m.Stats(context.Background())
	if stats["sent"] != 1 || stats["failed"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

// -- Dispatcher --

type mockApptSvc struct {
	appts map[uuid.UUID]*scheduling.Appointment
}

func (m *mockApptSvc) Get(_ context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, scheduling.ErrAppointmentNotFound
	}
	return a, nil
}

func (m *mockApptSvc) AppointmentsNeedingReminders(_ context.Context, _ int) ([]*scheduling.Appointment, error) {
	var out []*scheduling.Appointment
	for _, a := range m.appts {
		if a.Occupies() && !a.ReminderSent {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockApptSvc) AppointmentsNeedingConfirmation(_ context.Context, _ int) ([]*scheduling.Appointment, error) {
	var out []*scheduling.Appointment
	for _, a := range m.appts {
		if a.Status == scheduling.StatusScheduled && !a.ConfirmationSent {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockApptSvc) MarkReminderSent(_ context.Context, id uuid.UUID) error {
	m.appts[id].ReminderSent = true
	return nil
}

func (m *mockApptSvc) MarkConfirmationSent(_ context.Context, id uuid.UUID) error {
	m.appts[id].ConfirmationSent = true
	return nil
}

type mockPatients map[uuid.UUID]*patient.Patient

func (m mockPatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m[id]
	if !ok {
		return nil, scheduling.ErrPatientNotFound
	}
	return p, nil
}

type mockDoctors map[uuid.UUID]*doctor.Doctor

func (m mockDoctors) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m[id]
	if !ok {
		return nil, scheduling.ErrDoctorNotFound
	}
	return d, nil
}

type mockPredictions struct {
	preds map[uuid.UUID]*prediction.NoShowPrediction
}

func (m *mockPredictions) GetByAppointment(_ context.Context, id uuid.UUID) (*prediction.NoShowPrediction, error) {
	p, ok := m.preds[id]
	if !ok {
		return nil, prediction.ErrNotFound
	}
	return p, nil
}

func (m *mockPredictions) HighRiskAppointments(_ context.Context, _, _ time.Time, _ float64) ([]*prediction.HighRiskAppointment, error) {
	var out []*prediction.HighRiskAppointment
	for id, p := range m.preds {
		if p.RiskScore >= 0.6 {
			out = append(out, &prediction.HighRiskAppointment{AppointmentID: id, Prediction: *p})
		}
	}
	return out, nil
}

type mockSettings struct{ s settings.ClinicSettings }

func (m *mockSettings) Get(_ context.Context) (*settings.ClinicSettings, error) {
	cp := m.s
	return &cp, nil
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	email      *MockEmailSender
	sms        *MockSMSSender
	appts      *mockApptSvc
	patients   mockPatients
	doctors    mockDoctors
	preds      *mockPredictions
}

func newDispatcherFixture() *dispatcherFixture {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	appts := &mockApptSvc{appts: make(map[uuid.UUID]*scheduling.Appointment)}
	patients := mockPatients{}
	doctors := mockDoctors{}
	preds := &mockPredictions{preds: make(map[uuid.UUID]*prediction.NoShowPrediction)}
	clinicSettings := &mockSettings{s: settings.ClinicSettings{
		ClinicName:              "Downtown Clinic",
		ReminderHoursBefore:     24,
		ConfirmationHoursBefore: 2,
	}}

	manager := NewManager(email, sms, NewTemplateEngine())
	d := NewDispatcher(manager, appts, patients, doctors, preds, clinicSettings, zerolog.Nop())
	return &dispatcherFixture{
		dispatcher: d, email: email, sms: sms,
		appts: appts, patients: patients, doctors: doctors, preds: preds,
	}
}

func (f *dispatcherFixture) seed(preferred string) uuid.UUID {
	p := &patient.Patient{
		ID: uuid.New(), FirstName: "Jane", LastName: "Doe",
		Email: "jane@example.com", Phone: "555-0101",
		PreferredCommunication: preferred,
	}
	doc := &doctor.Doctor{ID: uuid.New(), FirstName: "Sam", LastName: "Lee", Specialty: "Cardiology"}
	a := &scheduling.Appointment{
		ID: uuid.New(), PatientID: p.ID, DoctorID: doc.ID,
		AppointmentDatetime: time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC),
		Duration:            30, Status: scheduling.StatusScheduled, AppointmentType: "general",
	}
	f.patients[p.ID] = p
	f.doctors[doc.ID] = doc
	f.appts.appts[a.ID] = a
	return a.ID
}

func TestSendReminderEmail(t *testing.T) {
	f := newDispatcherFixture()
	aid := f.seed("email")

	ok, err := f.dispatcher.SendReminder(context.Background(), aid)
	if err != nil || !ok {
		t.Fatalf("SendReminder = %v, %v", ok, err)
	}

	calls := f.email.Calls()
	if len(calls) != 1 {
		t.Fatalf("email calls = %d, want 1", len(calls))
	}
	if calls[0].To != "jane@example.com" {
		t.Errorf("recipient = %q", calls[0].To)
	}
	if !strings.Contains(calls[0].Body, "Downtown Clinic") {
		t.Errorf("clinic name missing from body: %q", calls[0].Body)
	}
	if !f.appts.appts[aid].ReminderSent {
		t.Error("reminder_sent flag not set")
	}
}

func TestSendReminderPhonePreferenceFallsBackToSMS(t *testing.T) {
	f := newDispatcherFixture()
	aid := f.seed("phone")

	ok, err := f.dispatcher.SendReminder(context.Background(), aid)
	if err != nil || !ok {
		t.Fatalf("SendReminder = %v, %v", ok, err)
	}
	if len(f.email.Calls()) != 0 {
		t.Error("phone preference should not send email")
	}
	calls := f.sms.Calls()
	if len(calls) != 1 || calls[0].To != "555-0101" {
		t.Fatalf("sms calls = %+v", calls)
	}
	if !strings.Contains(calls[0].Body, "Dr. Lee") {
		t.Errorf("sms body = %q", calls[0].Body)
	}
}

func TestSendReminderUsesUrgentVariantForHighRisk(t *testing.T) {
	f := newDispatcherFixture()
	aid := f.seed("email")
	f.preds.preds[aid] = &prediction.NoShowPrediction{AppointmentID: aid, RiskScore: 0.8}

	if ok, err := f.dispatcher.SendReminder(context.Background(), aid); err != nil || !ok {
		t.Fatalf("SendReminder = %v, %v", ok, err)
	}
	calls := f.email.Calls()
	if len(calls) != 1 || !strings.HasPrefix(calls[0].Subject, "URGENT:") {
		t.Errorf("expected urgent subject, got %+v", calls)
	}
}

func TestSendReminderAlreadySentIsNoop(t *testing.T) {
	f := newDispatcherFixture()
	aid := f.seed("email")
	f.appts.appts[aid].ReminderSent = true

	ok, err := f.dispatcher.SendReminder(context.Background(), aid)
	if err != nil || !ok {
		t.Fatalf("SendReminder = %v, %v", ok, err)
	}
	if len(f.email.Calls()) != 0 {
		t.Error("already-reminded appointment should not send again")
	}
}

func TestSendReminderUnknownAppointment(t *testing.T) {
	f := newDispatcherFixture()
	ok, err := f.dispatcher.SendReminder(context.Background(), uuid.New())
	if err != nil || ok {
		t.Errorf("SendReminder = %v, %v; want false, nil", ok, err)
	}
}

func TestSendNoShowFollowUpRequiresNoShowStatus(t *testing.T) {
	f := newDispatcherFixture()
	aid := f.seed("sms")

	if ok, _ := f.dispatcher.SendNoShowFollowUp(context.Background(), aid); ok {
		t.Error("scheduled appointment should not get a no-show follow-up")
	}

	f.appts.appts[aid].Status = scheduling.StatusNoShow
	ok, err := f.dispatcher.SendNoShowFollowUp(context.Background(), aid)
	if err != nil || !ok {
		t.Fatalf("SendNoShowFollowUp = %v, %v", ok, err)
	}
	if len(f.sms.Calls()) != 1 {
		t.Errorf("sms calls = %d, want 1", len(f.sms.Calls()))
	}
}

func TestSendCancellationIncludesReason(t *testing.T) {
	f := newDispatcherFixture()
	aid := f.seed("email")

	ok, err := f.dispatcher.SendCancellation(context.Background(), aid, "doctor unavailable")
	if err != nil || !ok {
		t.Fatalf("SendCancellation = %v, %v", ok, err)
	}
	calls := f.email.Calls()
	if len(calls) != 1 || !strings.Contains(calls[0].Body, "Reason: doctor unavailable") {
		t.Errorf("cancellation body = %+v", calls)
	}
}

func TestProcessScheduledRemindersIdempotent(t *testing.T) {
	f := newDispatcherFixture()
	f.seed("email")
	f.seed("sms")

	result, err := f.dispatcher.ProcessScheduledReminders(context.Background())
	if err != nil {
		t.Fatalf("ProcessScheduledReminders: %v", err)
	}
	if result.RemindersSent != 2 || result.ConfirmationsSent != 2 {
		t.Errorf("first sweep: %+v", result)
	}
	if result.ReminderFailures != 0 || result.ConfirmationFailures != 0 {
		t.Errorf("unexpected failures: %+v", result)
	}

	// Sent flags are monotonic, so the second sweep finds nothing to do.
	again, err := f.dispatcher.ProcessScheduledReminders(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again.RemindersSent != 0 || again.ConfirmationsSent != 0 {
		t.Errorf("second sweep re-sent: %+v", again)
	}
	if len(f.email.Calls())+len(f.sms.Calls()) != 4 {
		t.Errorf("total sends = %d, want 4", len(f.email.Calls())+len(f.sms.Calls()))
	}
}
