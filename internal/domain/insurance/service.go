package insurance

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/scheduling"
)

var ErrNotFound = errors.New("insurance: patient or appointment not found")

// numberPatterns validate member numbers per provider. Keys are normalized
// provider names (lowercase, spaces collapsed to underscores).
var numberPatterns = map[string]*regexp.Regexp{
	"medicare":          regexp.MustCompile(`^[0-9]{3}-[0-9]{2}-[0-9]{4}$`),
	"medicaid":          regexp.MustCompile(`^[A-Z]{2}[0-9]{8}$`),
	"blue_cross":        regexp.MustCompile(`^[A-Z]{3}[0-9]{6}$`),
	"aetna":             regexp.MustCompile(`^[0-9]{9}$`),
	"cigna":             regexp.MustCompile(`^[0-9]{10}$`),
	"humana":            regexp.MustCompile(`^[0-9]{9}$`),
	"kaiser":            regexp.MustCompile(`^[0-9]{10}$`),
	"united_healthcare": regexp.MustCompile(`^[0-9]{9}$`),
}

// coverageTable stands in for a payer clearinghouse. Terms are plan-level
// and adjusted per member by quirks in checkCoverage.
var coverageTable = map[string]Coverage{
	"medicare":          {Active: true, Copay: 20, Deductible: 0},
	"medicaid":          {Active: true, Copay: 0, Deductible: 0},
	"blue_cross":        {Active: true, Copay: 25, Deductible: 500},
	"aetna":             {Active: true, Copay: 30, Deductible: 1000},
	"cigna":             {Active: true, Copay: 25, Deductible: 750},
	"humana":            {Active: true, Copay: 20, Deductible: 500},
	"kaiser":            {Active: true, Copay: 15, Deductible: 0},
	"united_healthcare": {Active: true, Copay: 30, Deductible: 1000},
}

// DefaultServiceCost is the assumed appointment charge when none is given.
const DefaultServiceCost = 150.0

// metDeductible is the portion of the annual deductible assumed already
// satisfied. Real deductible tracking would be persistent.
const metDeductible = 200.0

type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	Update(ctx context.Context, p *patient.Patient) error
}

type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	Update(ctx context.Context, a *scheduling.Appointment) error
	ListBetween(ctx context.Context, start, end time.Time) ([]*scheduling.Appointment, error)
}

type Service struct {
	patients     PatientStore
	appointments AppointmentStore
	avgValue     float64
}

func NewService(patients PatientStore, appointments AppointmentStore, avgAppointmentValue float64) *Service {
	if avgAppointmentValue <= 0 {
		avgAppointmentValue = DefaultServiceCost
	}
	return &Service{patients: patients, appointments: appointments, avgValue: avgAppointmentValue}
}

func normalizeProvider(provider string) string {
	return strings.ReplaceAll(strings.ToLower(provider), " ", "_")
}

// validateNumber checks the member number against the provider's format.
func validateNumber(provider, number string) (bool, string) {
	pattern, ok := numberPatterns[normalizeProvider(provider)]
	if !ok {
		return false, fmt.Sprintf("unknown insurance provider: %s", provider)
	}
	if !pattern.MatchString(number) {
		return false, fmt.Sprintf("invalid insurance number format for %s", provider)
	}
	return true, "insurance number format is valid"
}

// checkCoverage looks up plan terms and applies the simulated per-member
// quirks: numbers ending in '0' are suspended, numbers ending in '1' carry
// a doubled copay.
func checkCoverage(provider, number string) Coverage {
	coverage, ok := coverageTable[normalizeProvider(provider)]
	if !ok {
		return Coverage{Reason: "provider not found in system"}
	}
	switch {
	case strings.HasSuffix(number, "0"):
		coverage.Active = false
		coverage.Reason = "policy suspended"
	case strings.HasSuffix(number, "1"):
		coverage.Copay *= 2
		coverage.Note = "high-deductible plan"
	}
	return coverage
}

// Verify checks the patient's coverage for an appointment. On success it
// marks the patient's insurance verified and flags the appointment; invalid
// or inactive coverage is reported without touching stored state.
func (s *Service) Verify(ctx context.Context, patientID, appointmentID uuid.UUID) (*Verification, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, ErrNotFound
	}
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, ErrNotFound
	}

	if ok, msg := validateNumber(p.InsuranceProvider, p.InsuranceNumber); !ok {
		return &Verification{Status: StatusInvalid, Message: msg}, nil
	}

	coverage := checkCoverage(p.InsuranceProvider, p.InsuranceNumber)
	if !coverage.Active {
		return &Verification{Status: StatusExpired, Message: "insurance coverage is not active", Coverage: &coverage}, nil
	}

	p.InsuranceStatus = patient.InsuranceVerified
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	a.InsuranceVerified = true
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}

	return &Verification{Status: StatusVerified, Message: "insurance verified successfully", Coverage: &coverage}, nil
}

// PatientResponsibility verifies coverage and splits the service cost into
// insurance and patient portions. The deductible is drawn down before the
// copay applies.
func (s *Service) PatientResponsibility(ctx context.Context, patientID, appointmentID uuid.UUID, serviceCost float64) (*Responsibility, error) {
	if serviceCost <= 0 {
		serviceCost = DefaultServiceCost
	}

	verification, err := s.Verify(ctx, patientID, appointmentID)
	if err != nil {
		return nil, err
	}
	if verification.Status != StatusVerified {
		return &Responsibility{
			TotalCost:       serviceCost,
			Patient:         serviceCost,
			PaymentRequired: true,
			InsuranceStatus: verification.Status,
			Message:         "insurance not verified - full payment required",
		}, nil
	}

	coverage := verification.Coverage
	remainingDeductible := coverage.Deductible - metDeductible
	if remainingDeductible < 0 {
		remainingDeductible = 0
	}

	var deductiblePayment, copayPayment float64
	if remainingDeductible > 0 {
		deductiblePayment = remainingDeductible
		if serviceCost < deductiblePayment {
			deductiblePayment = serviceCost
		}
	} else {
		copayPayment = coverage.Copay
		if serviceCost < copayPayment {
			copayPayment = serviceCost
		}
	}

	responsibility := deductiblePayment + copayPayment
	return &Responsibility{
		TotalCost:           serviceCost,
		InsuranceCoverage:   serviceCost - responsibility,
		Patient:             responsibility,
		Copay:               copayPayment,
		Deductible:          deductiblePayment,
		RemainingDeductible: remainingDeductible - deductiblePayment,
		PaymentRequired:     responsibility > 0,
		InsuranceStatus:     StatusVerified,
		Message:             "insurance verified - payment calculated",
	}, nil
}

// PaymentOptions lists the ways a patient can settle the given amount.
func (s *Service) PaymentOptions(ctx context.Context, patientID uuid.UUID, amount float64) ([]PaymentOption, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, ErrNotFound
	}

	var options []PaymentOption
	if p.InsuranceStatus == patient.InsuranceVerified {
		options = append(options, PaymentOption{
			Type: "insurance", Description: "Insurance coverage", Available: true,
		})
	}
	options = append(options,
		PaymentOption{Type: "cash", Description: "Cash payment", Amount: amount, Available: true},
		PaymentOption{Type: "credit_card", Description: "Credit card payment", Amount: amount, Available: true},
	)
	if amount > 100 {
		options = append(options, PaymentOption{
			Type: "payment_plan", Description: "Payment plan (3 installments)",
			Amount: amount / 3, Available: true, Installments: 3,
		})
	}
	if amount > 500 {
		options = append(options, PaymentOption{
			Type: "financial_assistance", Description: "Financial assistance program",
			Amount: amount * 0.5, Available: true, RequiresApplication: true,
		})
	}
	return options, nil
}

// Statistics reports verification coverage for appointments in [start, end].
// Revenue exposure assumes a 30% collection rate on unverified visits.
func (s *Service) Statistics(ctx context.Context, start, end time.Time) (*Statistics, error) {
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalAppointments: len(appts)}
	for _, a := range appts {
		if a.InsuranceVerified {
			stats.VerifiedInsurance++
		}
	}
	stats.UnverifiedInsurance = stats.TotalAppointments - stats.VerifiedInsurance
	if stats.TotalAppointments > 0 {
		stats.VerificationRate = float64(stats.VerifiedInsurance) / float64(stats.TotalAppointments) * 100
	}
	stats.PotentialRevenueLoss = float64(stats.UnverifiedInsurance) * s.avgValue * 0.3

	if float64(stats.UnverifiedInsurance) > float64(stats.TotalAppointments)*0.2 {
		stats.Recommendation = "Increase insurance verification before appointments"
	} else {
		stats.Recommendation = "Insurance verification rate is good"
	}
	return stats, nil
}
