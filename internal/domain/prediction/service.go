package prediction

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/scheduling"
)

// PatientStore is the slice of the patient repository the predictor needs.
type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// AppointmentStore is the slice of the appointment repository the predictor
// needs.
type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, after *time.Time) ([]*scheduling.Appointment, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]*scheduling.Appointment, error)
}

type Service struct {
	predictions  Repository
	patients     PatientStore
	appointments AppointmentStore
	avgValue     float64
	now          func() time.Time
}

func NewService(predictions Repository, patients PatientStore, appointments AppointmentStore, avgAppointmentValue float64) *Service {
	if avgAppointmentValue <= 0 {
		avgAppointmentValue = 150
	}
	return &Service{
		predictions:  predictions,
		patients:     patients,
		appointments: appointments,
		avgValue:     avgAppointmentValue,
		now:          time.Now,
	}
}

// Predict computes and persists the no-show risk for an appointment. The
// result is deterministic given the persisted state; re-predicting replaces
// the stored row rather than appending.
func (s *Service) Predict(ctx context.Context, patientID, appointmentID uuid.UUID) (*NoShowPrediction, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, ErrNotFound
	}
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, ErrNotFound
	}
	history, err := s.appointments.ListByPatient(ctx, patientID, nil)
	if err != nil {
		return nil, err
	}

	riskScore, factors := score(p, a, history, s.now())
	pred := &NoShowPrediction{
		PatientID:      patientID,
		AppointmentID:  appointmentID,
		RiskScore:      riskScore,
		RiskFactors:    factors,
		PredictionDate: s.now(),
	}
	if err := s.predictions.Upsert(ctx, pred); err != nil {
		return nil, err
	}
	return pred, nil
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*NoShowPrediction, error) {
	return s.predictions.GetByAppointment(ctx, appointmentID)
}

// HighRiskAppointments returns live appointments in [start, end] whose risk
// score meets the threshold, generating a prediction for any appointment
// that does not yet have one.
func (s *Service) HighRiskAppointments(ctx context.Context, start, end time.Time, threshold float64) ([]*HighRiskAppointment, error) {
	if threshold <= 0 {
		threshold = 0.6
	}
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var result []*HighRiskAppointment
	for _, a := range appts {
		if !a.Occupies() {
			continue
		}
		pred, err := s.predictions.GetByAppointment(ctx, a.ID)
		if err == ErrNotFound {
			pred, err = s.Predict(ctx, a.PatientID, a.ID)
		}
		if err != nil {
			return nil, err
		}
		if pred.RiskScore >= threshold {
			result = append(result, &HighRiskAppointment{
				AppointmentID:       a.ID,
				PatientID:           a.PatientID,
				AppointmentDatetime: a.AppointmentDatetime,
				Prediction:          *pred,
			})
		}
	}
	return result, nil
}

// MitigationRecommendations suggests interventions proportional to the
// prediction's score and triggered factors.
func (s *Service) MitigationRecommendations(pred *NoShowPrediction) []string {
	var recs []string

	if pred.RiskScore > 0.7 {
		recs = append(recs,
			"Schedule multiple reminder calls",
			"Send SMS and email reminders",
			"Consider offering appointment rescheduling")
	}
	if pred.RiskScore > 0.5 {
		recs = append(recs,
			"Send confirmation call 24 hours before",
			"Verify insurance information")
	}

	for _, f := range pred.RiskFactors {
		switch f {
		case FactorHistorical:
			recs = append(recs,
				"Require deposit or pre-payment",
				"Schedule during preferred time slots")
		case FactorTiming:
			recs = append(recs,
				"Offer alternative time slots",
				"Send extra reminder for timing")
		case FactorFinancial:
			recs = append(recs,
				"Verify insurance coverage",
				"Discuss payment options")
		}
	}
	return recs
}

// ClinicNoShowRate aggregates no-show behavior over [start, end], including
// the revenue exposure at the clinic's average appointment value.
func (s *Service) ClinicNoShowRate(ctx context.Context, start, end time.Time) (*ClinicStats, error) {
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := &ClinicStats{TotalAppointments: len(appts)}
	for _, a := range appts {
		switch a.Status {
		case scheduling.StatusNoShow:
			stats.NoShows++
		case scheduling.StatusCompleted:
			stats.Completed++
		case scheduling.StatusCancelled:
			stats.Cancelled++
		}
	}
	if stats.TotalAppointments > 0 {
		total := float64(stats.TotalAppointments)
		stats.NoShowRate = round2(float64(stats.NoShows) / total * 100)
		stats.CompletionRate = round2(float64(stats.Completed) / total * 100)
		stats.CancellationRate = round2(float64(stats.Cancelled) / total * 100)
	}
	stats.PotentialRevenueLoss = float64(stats.NoShows) * s.avgValue
	return stats, nil
}

// PatientRiskProfile summarizes a patient's attendance record and current
// predicted risk.
func (s *Service) PatientRiskProfile(ctx context.Context, patientID uuid.UUID) (*RiskProfile, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, ErrNotFound
	}
	history, err := s.appointments.ListByPatient(ctx, patientID, nil)
	if err != nil {
		return nil, err
	}

	profile := &RiskProfile{
		PatientID:         patientID,
		PatientName:       p.FullName(),
		TotalAppointments: len(history),
		LastAppointment:   p.LastAppointment,
	}
	var latest *scheduling.Appointment
	for _, a := range history {
		switch a.Status {
		case scheduling.StatusNoShow:
			profile.NoShows++
		case scheduling.StatusCompleted:
			profile.Completed++
		}
		if a.Occupies() && (latest == nil || a.AppointmentDatetime.After(latest.AppointmentDatetime)) {
			latest = a
		}
	}
	if profile.TotalAppointments > 0 {
		profile.NoShowRate = round2(float64(profile.NoShows) / float64(profile.TotalAppointments) * 100)
	}
	if latest != nil {
		if pred, err := s.predictions.GetByAppointment(ctx, latest.ID); err == nil {
			profile.CurrentRiskScore = pred.RiskScore
		}
	}
	profile.RiskLevel = rateRiskLevel(profile.NoShowRate)
	return profile, nil
}

// rateRiskLevel bands a historical no-show percentage, distinct from the
// per-prediction RiskLevel banding.
func rateRiskLevel(rate float64) string {
	switch {
	case rate < 10:
		return "Low"
	case rate < 25:
		return "Medium"
	case rate < 40:
		return "High"
	default:
		return "Very High"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
