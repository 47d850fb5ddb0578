package insurance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/scheduling"
)

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

func (m *mockPatientStore) Update(_ context.Context, p *patient.Patient) error {
	m.patients[p.ID] = p
	return nil
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

func (m *mockApptStore) Update(_ context.Context, a *scheduling.Appointment) error {
	m.appts[a.ID] = a
	return nil
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

type fixture struct {
	svc      *Service
	patients *mockPatientStore
	appts    *mockApptStore
}

func newFixture() *fixture {
	patients := &mockPatientStore{patients: make(map[uuid.UUID]*patient.Patient)}
	appts := &mockApptStore{appts: make(map[uuid.UUID]*scheduling.Appointment)}
	return &fixture{
		svc:      NewService(patients, appts, 150),
		patients: patients,
		appts:    appts,
	}
}

func (f *fixture) add(provider, number string) (uuid.UUID, uuid.UUID) {
	p := &patient.Patient{
		ID:                uuid.New(),
		FirstName:         "Jane",
		LastName:          "Doe",
		InsuranceProvider: provider,
		InsuranceNumber:   number,
		InsuranceStatus:   patient.InsurancePending,
	}
	a := &scheduling.Appointment{
		ID:                  uuid.New(),
		PatientID:           p.ID,
		AppointmentDatetime: time.Now().AddDate(0, 0, 3),
		Status:              scheduling.StatusScheduled,
	}
	f.patients.patients[p.ID] = p
	f.appts.appts[a.ID] = a
	return p.ID, a.ID
}

func TestVerifySuccessUpdatesState(t *testing.T) {
	f := newFixture()
	pid, aid := f.add("Blue Cross", "ABC123456")

	result, err := f.svc.Verify(context.Background(), pid, aid)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Status != StatusVerified {
		t.Fatalf("status = %q, want verified: %s", result.Status, result.Message)
	}
	if result.Coverage == nil || result.Coverage.Copay != 25 || result.Coverage.Deductible != 500 {
		t.Errorf("unexpected coverage: %+v", result.Coverage)
	}
	if f.patients.patients[pid].InsuranceStatus != patient.InsuranceVerified {
		t.Error("patient insurance_status not updated")
	}
	if !f.appts.appts[aid].InsuranceVerified {
		t.Error("appointment insurance_verified not set")
	}
}

func TestVerifyNumberFormats(t *testing.T) {
	cases := []struct {
		name     string
		provider string
		number   string
		want     string
	}{
		{"medicare dashed", "Medicare", "123-45-6789", StatusVerified},
		{"medicare undashed rejected", "Medicare", "123456789", StatusInvalid},
		{"medicaid", "Medicaid", "NY12345678", StatusVerified},
		{"aetna nine digits", "Aetna", "123456789", StatusVerified},
		{"aetna short", "Aetna", "12345678", StatusInvalid},
		{"cigna ten digits", "Cigna", "1234567899", StatusVerified},
		{"united with space", "United Healthcare", "123456789", StatusVerified},
		{"unknown provider", "Acme Health", "123456789", StatusInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			pid, aid := f.add(tc.provider, tc.number)
			result, err := f.svc.Verify(context.Background(), pid, aid)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if result.Status != tc.want {
				t.Errorf("status = %q, want %q (%s)", result.Status, tc.want, result.Message)
			}
		})
	}
}

func TestVerifyQuirks(t *testing.T) {
	t.Run("number ending in 0 is suspended", func(t *testing.T) {
		f := newFixture()
		pid, aid := f.add("Aetna", "123456780")
		result, err := f.svc.Verify(context.Background(), pid, aid)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if result.Status != StatusExpired {
			t.Fatalf("status = %q, want expired", result.Status)
		}
		if f.patients.patients[pid].InsuranceStatus != patient.InsurancePending {
			t.Error("patient status should be untouched on failed verification")
		}
		if f.appts.appts[aid].InsuranceVerified {
			t.Error("appointment should not be flagged on failed verification")
		}
	})

	t.Run("number ending in 1 doubles copay", func(t *testing.T) {
		f := newFixture()
		pid, aid := f.add("Aetna", "123456781")
		result, err := f.svc.Verify(context.Background(), pid, aid)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if result.Status != StatusVerified {
			t.Fatalf("status = %q, want verified", result.Status)
		}
		if result.Coverage.Copay != 60 {
			t.Errorf("copay = %f, want 60", result.Coverage.Copay)
		}
	})
}

func TestVerifyUnknownIDs(t *testing.T) {
	f := newFixture()
	pid, _ := f.add("Aetna", "123456789")

	if _, err := f.svc.Verify(context.Background(), uuid.New(), uuid.New()); err != ErrNotFound {
		t.Errorf("unknown patient: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Verify(context.Background(), pid, uuid.New()); err != ErrNotFound {
		t.Errorf("unknown appointment: err = %v, want ErrNotFound", err)
	}
}

func TestPatientResponsibilityDeductiblePhase(t *testing.T) {
	f := newFixture()
	// Blue Cross: deductible 500, 200 assumed met, so 300 remains and the
	// whole 150 visit goes to the deductible.
	pid, aid := f.add("Blue Cross", "ABC123456")

	r, err := f.svc.PatientResponsibility(context.Background(), pid, aid, 0)
	if err != nil {
		t.Fatalf("PatientResponsibility: %v", err)
	}
	if r.TotalCost != 150 || r.Patient != 150 || r.InsuranceCoverage != 0 {
		t.Errorf("unexpected split: %+v", r)
	}
	if r.Deductible != 150 || r.Copay != 0 {
		t.Errorf("expected all-deductible payment, got %+v", r)
	}
	if r.RemainingDeductible != 150 {
		t.Errorf("remaining_deductible = %f, want 150", r.RemainingDeductible)
	}
	if !r.PaymentRequired {
		t.Error("payment_required should be true")
	}
}

func TestPatientResponsibilityCopayPhase(t *testing.T) {
	f := newFixture()
	// Kaiser: no deductible, so only the copay applies.
	pid, aid := f.add("Kaiser", "1234567899")

	r, err := f.svc.PatientResponsibility(context.Background(), pid, aid, 150)
	if err != nil {
		t.Fatalf("PatientResponsibility: %v", err)
	}
	if r.Copay != 15 || r.Deductible != 0 {
		t.Errorf("expected copay-only payment, got %+v", r)
	}
	if r.Patient != 15 || r.InsuranceCoverage != 135 {
		t.Errorf("unexpected split: %+v", r)
	}
}

func TestPatientResponsibilityUnverified(t *testing.T) {
	f := newFixture()
	pid, aid := f.add("Acme Health", "123")

	r, err := f.svc.PatientResponsibility(context.Background(), pid, aid, 200)
	if err != nil {
		t.Fatalf("PatientResponsibility: %v", err)
	}
	if r.Patient != 200 || r.InsuranceCoverage != 0 || !r.PaymentRequired {
		t.Errorf("unverified insurance should mean full payment: %+v", r)
	}
	if r.InsuranceStatus != StatusInvalid {
		t.Errorf("insurance_status = %q, want invalid", r.InsuranceStatus)
	}
}

func TestPaymentOptionsTiers(t *testing.T) {
	f := newFixture()
	pid, aid := f.add("Aetna", "123456789")
	if _, err := f.svc.Verify(context.Background(), pid, aid); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	cases := []struct {
		amount float64
		types  []string
	}{
		{50, []string{"insurance", "cash", "credit_card"}},
		{150, []string{"insurance", "cash", "credit_card", "payment_plan"}},
		{600, []string{"insurance", "cash", "credit_card", "payment_plan", "financial_assistance"}},
	}

	for _, tc := range cases {
		options, err := f.svc.PaymentOptions(context.Background(), pid, tc.amount)
		if err != nil {
			t.Fatalf("PaymentOptions(%f): %v", tc.amount, err)
		}
		if len(options) != len(tc.types) {
			t.Errorf("amount %f: got %d options, want %d", tc.amount, len(options), len(tc.types))
			continue
		}
		for i, want := range tc.types {
			if options[i].Type != want {
				t.Errorf("amount %f: option[%d] = %q, want %q", tc.amount, i, options[i].Type, want)
			}
		}
	}
}

func TestPaymentOptionsInstallmentsAndAssistance(t *testing.T) {
	f := newFixture()
	pid, _ := f.add("Aetna", "123456789")

	options, err := f.svc.PaymentOptions(context.Background(), pid, 600)
	if err != nil {
		t.Fatalf("PaymentOptions: %v", err)
	}
	// Unverified patient gets no insurance option.
	byType := map[string]PaymentOption{}
	for _, o := range options {
		byType[o.Type] = o
	}
	if _, ok := byType["insurance"]; ok {
		t.Error("unverified patient should not see the insurance option")
	}
	if plan := byType["payment_plan"]; plan.Installments != 3 || plan.Amount != 200 {
		t.Errorf("unexpected payment plan: %+v", plan)
	}
	if fa := byType["financial_assistance"]; !fa.RequiresApplication || fa.Amount != 300 {
		t.Errorf("unexpected financial assistance: %+v", fa)
	}
}

func TestStatistics(t *testing.T) {
	f := newFixture()
	now := time.Now()
	for i := 0; i < 5; i++ {
		f.appts.appts[uuid.New()] = &scheduling.Appointment{
			ID:                  uuid.New(),
			AppointmentDatetime: now.AddDate(0, 0, -i-1),
			InsuranceVerified:   i < 2,
		}
	}

	stats, err := f.svc.Statistics(context.Background(), now.AddDate(0, -1, 0), now)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalAppointments != 5 || stats.VerifiedInsurance != 2 || stats.UnverifiedInsurance != 3 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.VerificationRate != 40 {
		t.Errorf("verification_rate = %f, want 40", stats.VerificationRate)
	}
	if stats.PotentialRevenueLoss != 135 {
		t.Errorf("potential_revenue_loss = %f, want 135 (3 * 150 * 0.3)", stats.PotentialRevenueLoss)
	}
	if stats.Recommendation != "Increase insurance verification before appointments" {
		t.Errorf("unexpected recommendation: %q", stats.Recommendation)
	}
}
