package prediction

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/scheduling"
)

// -- Mock stores --

type mockPredRepo struct {
	preds   map[uuid.UUID]*NoShowPrediction
	upserts int
}

func newMockPredRepo() *mockPredRepo {
	return &mockPredRepo{preds: make(map[uuid.UUID]*NoShowPrediction)}
}

func (m *mockPredRepo) Upsert(_ context.Context, p *NoShowPrediction) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.preds[p.AppointmentID] = &cp
	m.upserts++
	return nil
}

func (m *mockPredRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*NoShowPrediction, error) {
	p, ok := m.preds[appointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type mockPatientStore struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatientStore) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

type mockApptStore struct {
	appts map[uuid.UUID]*scheduling.Appointment
}

func (m *mockApptStore) GetByID(_ context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockApptStore) ListByPatient(_ context.Context, patientID uuid.UUID, after *time.Time) ([]*scheduling.Appointment, error) {
	var result []*scheduling.Appointment
	for _, a := range m.appts {
		if a.PatientID != patientID {
			continue
		}
		if after != nil && !a.AppointmentDatetime.After(*after) {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (m *mockApptStore) ListBetween(_ context.Context, start, end time.Time) ([]*scheduling.Appointment, error) {
	var result []*scheduling.Appointment
	for _, a := range m.appts {
		if !a.AppointmentDatetime.Before(start) && !a.AppointmentDatetime.After(end) {
			result = append(result, a)
		}
	}
	return result, nil
}

// -- Fixtures --

// testNow is a fixed Thursday used as "now" in all scoring tests.
var testNow = time.Date(2024, 6, 6, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	preds    *mockPredRepo
	patients *mockPatientStore
	appts    *mockApptStore
}

func newFixture() *fixture {
	preds := newMockPredRepo()
	patients := &mockPatientStore{patients: make(map[uuid.UUID]*patient.Patient)}
	appts := &mockApptStore{appts: make(map[uuid.UUID]*scheduling.Appointment)}
	svc := NewService(preds, patients, appts, 150)
	svc.now = func() time.Time { return testNow }
	return &fixture{svc: svc, preds: preds, patients: patients, appts: appts}
}

func (f *fixture) addPatient(p *patient.Patient) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.patients.patients[p.ID] = p
	return p.ID
}

func (f *fixture) addAppt(a *scheduling.Appointment) uuid.UUID {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.appts.appts[a.ID] = a
	return a.ID
}

// reliablePatient is age 40, verified-shaped insurance, good emergency
// contact, phone reminders: every demographic and financial signal quiet.
func reliablePatient() *patient.Patient {
	return &patient.Patient{
		FirstName:              "Jane",
		LastName:               "Doe",
		DateOfBirth:            testNow.AddDate(-40, 0, 0),
		Phone:                  "555-0101",
		EmergencyContact:       "John Doe 555-0102",
		InsuranceProvider:      "BlueCross",
		InsuranceNumber:        "BC123456789",
		Status:                 patient.StatusActive,
		PreferredCommunication: "phone",
	}
}

// -- Scoring scenarios --

func TestPredictLowRiskBaseline(t *testing.T) {
	f := newFixture()
	pid := f.addPatient(reliablePatient())

	// Tuesday 10:00, booked 5 days ahead, insurance verified.
	at := time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC)
	aid := f.addAppt(&scheduling.Appointment{
		PatientID:           pid,
		DoctorID:            uuid.New(),
		AppointmentDatetime: at,
		Status:              scheduling.StatusScheduled,
		InsuranceVerified:   true,
		CreatedAt:           at.AddDate(0, 0, -5),
	})

	pred, err := f.svc.Predict(context.Background(), pid, aid)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	// Only the cold-start historical sub-score contributes: 0.3 * 0.4.
	if math.Abs(pred.RiskScore-0.12) > 1e-9 {
		t.Errorf("risk_score = %f, want 0.12", pred.RiskScore)
	}
	if len(pred.RiskFactors) != 0 {
		t.Errorf("risk_factors = %v, want none", pred.RiskFactors)
	}
	if RiskLevel(pred.RiskScore) != "Low" {
		t.Errorf("risk level = %q, want Low", RiskLevel(pred.RiskScore))
	}
}

func TestPredictDeterministicAndReplaces(t *testing.T) {
	f := newFixture()
	pid := f.addPatient(reliablePatient())
	at := time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC)
	aid := f.addAppt(&scheduling.Appointment{
		PatientID:           pid,
		AppointmentDatetime: at,
		Status:              scheduling.StatusScheduled,
		InsuranceVerified:   true,
		CreatedAt:           at.AddDate(0, 0, -5),
	})

	first, err := f.svc.Predict(context.Background(), pid, aid)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	second, err := f.svc.Predict(context.Background(), pid, aid)
	if err != nil {
		t.Fatalf("second Predict: %v", err)
	}

	if first.RiskScore != second.RiskScore {
		t.Errorf("scores differ: %f vs %f", first.RiskScore, second.RiskScore)
	}
	if len(first.RiskFactors) != len(second.RiskFactors) {
		t.Errorf("factor lists differ: %v vs %v", first.RiskFactors, second.RiskFactors)
	}
	if len(f.preds.preds) != 1 {
		t.Errorf("stored predictions = %d, want 1 (replace, not append)", len(f.preds.preds))
	}
}

func TestPredictUnknownIDs(t *testing.T) {
	f := newFixture()
	pid := f.addPatient(reliablePatient())

	if _, err := f.svc.Predict(context.Background(), uuid.New(), uuid.New()); err != ErrNotFound {
		t.Errorf("unknown patient: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Predict(context.Background(), pid, uuid.New()); err != ErrNotFound {
		t.Errorf("unknown appointment: err = %v, want ErrNotFound", err)
	}
}

func TestPredictHighRiskPatient(t *testing.T) {
	f := newFixture()

	p := reliablePatient()
	p.Status = patient.StatusHighRisk
	p.DateOfBirth = testNow.AddDate(-22, 0, 0)
	p.EmergencyContact = ""
	p.PreferredCommunication = "email"
	p.InsuranceProvider = "Medicaid"
	p.InsuranceNumber = "123"
	pid := f.addPatient(p)

	// Saturday 07:00, same-day booking, unverified insurance; plus a
	// history of misses inside the 90-day window.
	at := time.Date(2024, 6, 8, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		f.addAppt(&scheduling.Appointment{
			PatientID:           pid,
			AppointmentDatetime: testNow.AddDate(0, 0, -7*(i+1)),
			Status:              scheduling.StatusNoShow,
			CreatedAt:           testNow.AddDate(0, 0, -7*(i+1)-3),
		})
	}
	aid := f.addAppt(&scheduling.Appointment{
		PatientID:           pid,
		AppointmentDatetime: at,
		Status:              scheduling.StatusScheduled,
		CreatedAt:           at,
	})

	pred, err := f.svc.Predict(context.Background(), pid, aid)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if pred.RiskScore < 0 || pred.RiskScore > 1 {
		t.Fatalf("risk_score = %f outside [0,1]", pred.RiskScore)
	}
	if RiskLevel(pred.RiskScore) != "High" {
		t.Errorf("risk level = %q (score %f), want High", RiskLevel(pred.RiskScore), pred.RiskScore)
	}
	want := []string{FactorHistorical, FactorTiming, FactorDemographic, FactorFinancial}
	if len(pred.RiskFactors) != len(want) {
		t.Fatalf("risk_factors = %v, want all four", pred.RiskFactors)
	}
	for i, w := range want {
		if pred.RiskFactors[i] != w {
			t.Errorf("risk_factors[%d] = %q, want %q", i, pred.RiskFactors[i], w)
		}
	}
}

// -- Sub-score rules --

func TestTimingRiskAdvanceBookingPenaltiesStack(t *testing.T) {
	// Wednesday 10:00 appointments: no weekday or hour penalty, so timing
	// risk isolates the advance-booking terms.
	at := time.Date(2024, 9, 11, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		daysAdvance int
		want        float64
	}{
		{"5 days ahead", 5, 0},
		{"45 days ahead", 45, 0.10},
		{"70 days ahead: both penalties", 70, 0.30},
		{"same day", 0, 0.15},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &scheduling.Appointment{
				AppointmentDatetime: at,
				CreatedAt:           at.AddDate(0, 0, -tc.daysAdvance),
			}
			got := timingRisk(a)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("timingRisk = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestTimingRiskDayAndHour(t *testing.T) {
	mk := func(at time.Time) *scheduling.Appointment {
		return &scheduling.Appointment{AppointmentDatetime: at, CreatedAt: at.AddDate(0, 0, -5)}
	}

	cases := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"monday mid-morning", time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC), 0.10},
		{"friday", time.Date(2024, 6, 7, 10, 0, 0, 0, time.UTC), 0.15},
		{"saturday", time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC), 0.20},
		{"early hour", time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC), 0.10},
		{"late hour", time.Date(2024, 6, 4, 17, 0, 0, 0, time.UTC), 0.10},
		{"lunch hour", time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC), 0.05},
		{"quiet tuesday", time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := timingRisk(mk(tc.at))
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("timingRisk = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestHistoricalRiskColdStart(t *testing.T) {
	if got := historicalRisk(nil, testNow); got != 0.3 {
		t.Errorf("historicalRisk(no history) = %f, want 0.3", got)
	}
	one := []*scheduling.Appointment{{Status: scheduling.StatusCompleted, AppointmentDatetime: testNow.AddDate(0, 0, -10)}}
	if got := historicalRisk(one, testNow); got != 0.3 {
		t.Errorf("historicalRisk(one appointment) = %f, want 0.3", got)
	}
}

func TestHistoricalRiskRecencyBlend(t *testing.T) {
	// Two old completions, two recent no-shows: overall rate 0.5, recent
	// rate 1.0, blended 0.3*0.5 + 0.7*1.0 = 0.85, doubled and clamped to 1.
	history := []*scheduling.Appointment{
		{Status: scheduling.StatusCompleted, AppointmentDatetime: testNow.AddDate(0, 0, -200)},
		{Status: scheduling.StatusCompleted, AppointmentDatetime: testNow.AddDate(0, 0, -180)},
		{Status: scheduling.StatusNoShow, AppointmentDatetime: testNow.AddDate(0, 0, -20)},
		{Status: scheduling.StatusNoShow, AppointmentDatetime: testNow.AddDate(0, 0, -10)},
	}
	if got := historicalRisk(history, testNow); got != 1.0 {
		t.Errorf("historicalRisk = %f, want 1.0", got)
	}
}

func TestDemographicRiskAgeBands(t *testing.T) {
	mk := func(age int) *patient.Patient {
		p := reliablePatient()
		p.DateOfBirth = testNow.AddDate(-age, 0, -1)
		return p
	}

	cases := []struct {
		age  int
		want float64
	}{
		{22, 0.20},
		{30, 0.10},
		{40, 0},
		{70, 0}, // -0.1 clamps at zero with no other signals
	}
	for _, tc := range cases {
		got := demographicRisk(mk(tc.age), testNow)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("age %d: demographicRisk = %f, want %f", tc.age, got, tc.want)
		}
	}
}

func TestFinancialRisk(t *testing.T) {
	p := reliablePatient()
	verified := &scheduling.Appointment{InsuranceVerified: true}
	unverified := &scheduling.Appointment{}

	if got := financialRisk(p, verified); got != 0 {
		t.Errorf("verified reliable patient: financialRisk = %f, want 0", got)
	}
	if got := financialRisk(p, unverified); math.Abs(got-0.20) > 1e-9 {
		t.Errorf("unverified: financialRisk = %f, want 0.20", got)
	}

	p.InsuranceProvider = "SELF_PAY"
	p.InsuranceNumber = "12"
	if got := financialRisk(p, unverified); math.Abs(got-0.45) > 1e-9 {
		t.Errorf("all signals: financialRisk = %f, want 0.45", got)
	}
}

// -- Aggregations --

func TestHighRiskAppointmentsGeneratesMissingPredictions(t *testing.T) {
	f := newFixture()

	p := reliablePatient()
	p.Status = patient.StatusHighRisk
	p.DateOfBirth = testNow.AddDate(-22, 0, 0)
	p.EmergencyContact = ""
	p.InsuranceProvider = "Medicaid"
	p.InsuranceNumber = "12"
	pid := f.addPatient(p)

	for i := 0; i < 3; i++ {
		f.addAppt(&scheduling.Appointment{
			PatientID:           pid,
			AppointmentDatetime: testNow.AddDate(0, 0, -7*(i+1)),
			Status:              scheduling.StatusNoShow,
		})
	}
	at := time.Date(2024, 6, 8, 7, 0, 0, 0, time.UTC)
	aid := f.addAppt(&scheduling.Appointment{
		PatientID:           pid,
		AppointmentDatetime: at,
		Status:              scheduling.StatusScheduled,
		CreatedAt:           at,
	})
	// Cancelled appointments are skipped regardless of risk.
	f.addAppt(&scheduling.Appointment{
		PatientID:           pid,
		AppointmentDatetime: at.Add(time.Hour),
		Status:              scheduling.StatusCancelled,
		CreatedAt:           at,
	})

	items, err := f.svc.HighRiskAppointments(context.Background(), testNow, testNow.AddDate(0, 0, 30), 0.6)
	if err != nil {
		t.Fatalf("HighRiskAppointments: %v", err)
	}
	if len(items) != 1 || items[0].AppointmentID != aid {
		t.Fatalf("got %d high-risk appointments, want the scheduled one", len(items))
	}
	if _, err := f.preds.GetByAppointment(context.Background(), aid); err != nil {
		t.Error("expected prediction to be generated and stored")
	}
}

func TestClinicNoShowRate(t *testing.T) {
	f := newFixture()
	pid := f.addPatient(reliablePatient())

	statuses := []string{
		scheduling.StatusCompleted, scheduling.StatusCompleted,
		scheduling.StatusNoShow, scheduling.StatusCancelled,
	}
	for i, st := range statuses {
		f.addAppt(&scheduling.Appointment{
			PatientID:           pid,
			AppointmentDatetime: testNow.AddDate(0, 0, -i-1),
			Status:              st,
		})
	}

	stats, err := f.svc.ClinicNoShowRate(context.Background(), testNow.AddDate(0, 0, -30), testNow)
	if err != nil {
		t.Fatalf("ClinicNoShowRate: %v", err)
	}
	if stats.TotalAppointments != 4 || stats.NoShows != 1 || stats.Completed != 2 || stats.Cancelled != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.NoShowRate != 25 || stats.CompletionRate != 50 || stats.CancellationRate != 25 {
		t.Errorf("unexpected rates: %+v", stats)
	}
	if stats.PotentialRevenueLoss != 150 {
		t.Errorf("potential_revenue_loss = %f, want 150", stats.PotentialRevenueLoss)
	}
}

func TestPatientRiskProfile(t *testing.T) {
	f := newFixture()
	pid := f.addPatient(reliablePatient())

	f.addAppt(&scheduling.Appointment{PatientID: pid, AppointmentDatetime: testNow.AddDate(0, 0, -30), Status: scheduling.StatusCompleted})
	f.addAppt(&scheduling.Appointment{PatientID: pid, AppointmentDatetime: testNow.AddDate(0, 0, -20), Status: scheduling.StatusNoShow})
	upcoming := f.addAppt(&scheduling.Appointment{PatientID: pid, AppointmentDatetime: testNow.AddDate(0, 0, 5), Status: scheduling.StatusScheduled, CreatedAt: testNow})

	if _, err := f.svc.Predict(context.Background(), pid, upcoming); err != nil {
		t.Fatalf("Predict: %v", err)
	}

	profile, err := f.svc.PatientRiskProfile(context.Background(), pid)
	if err != nil {
		t.Fatalf("PatientRiskProfile: %v", err)
	}
	if profile.TotalAppointments != 3 || profile.NoShows != 1 || profile.Completed != 1 {
		t.Errorf("unexpected counts: %+v", profile)
	}
	if profile.NoShowRate != 33.33 {
		t.Errorf("no_show_rate = %f, want 33.33", profile.NoShowRate)
	}
	if profile.RiskLevel != "High" {
		t.Errorf("risk_level = %q, want High", profile.RiskLevel)
	}
	if profile.CurrentRiskScore == 0 {
		t.Error("expected current_risk_score from latest prediction")
	}
}

func TestMitigationRecommendations(t *testing.T) {
	svc := newFixture().svc

	low := &NoShowPrediction{RiskScore: 0.2}
	if recs := svc.MitigationRecommendations(low); len(recs) != 0 {
		t.Errorf("low risk: got %d recommendations, want 0", len(recs))
	}

	high := &NoShowPrediction{
		RiskScore:   0.8,
		RiskFactors: []string{FactorHistorical, FactorFinancial},
	}
	recs := svc.MitigationRecommendations(high)
	if len(recs) != 9 {
		t.Errorf("high risk: got %d recommendations, want 9", len(recs))
	}
}
