package prediction

import (
	"time"

	"github.com/google/uuid"
)

// Factor labels attached to a prediction when the matching sub-score
// exceeds the significance threshold.
const (
	FactorHistorical  = "High historical no-show rate"
	FactorTiming      = "Unfavorable appointment timing"
	FactorDemographic = "Demographic risk factors"
	FactorFinancial   = "Insurance/financial concerns"
)

// NoShowPrediction maps to the no_show_prediction table. At most one live
// row exists per appointment; re-predicting replaces the previous row.
type NoShowPrediction struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	AppointmentID  uuid.UUID `db:"appointment_id" json:"appointment_id"`
	RiskScore      float64   `db:"risk_score" json:"risk_score"`
	RiskFactors    []string  `db:"risk_factors" json:"risk_factors"`
	PredictionDate time.Time `db:"prediction_date" json:"prediction_date"`
}

// RiskLevel bands a score for presentation. The thresholds are fixed:
// callers elsewhere rely on these exact cut points.
func RiskLevel(score float64) string {
	if score > 0.6 {
		return "High"
	}
	if score > 0.3 {
		return "Medium"
	}
	return "Low"
}

// ClinicStats summarizes clinic-wide no-show behavior over a range.
type ClinicStats struct {
	TotalAppointments    int     `json:"total_appointments"`
	NoShows              int     `json:"no_shows"`
	Completed            int     `json:"completed"`
	Cancelled            int     `json:"cancelled"`
	NoShowRate           float64 `json:"no_show_rate"`
	CompletionRate       float64 `json:"completion_rate"`
	CancellationRate     float64 `json:"cancellation_rate"`
	PotentialRevenueLoss float64 `json:"potential_revenue_loss"`
}

// RiskProfile is a per-patient risk summary.
type RiskProfile struct {
	PatientID         uuid.UUID  `json:"patient_id"`
	PatientName       string     `json:"patient_name"`
	TotalAppointments int        `json:"total_appointments"`
	NoShows           int        `json:"no_shows"`
	Completed         int        `json:"completed"`
	NoShowRate        float64    `json:"no_show_rate"`
	CurrentRiskScore  float64    `json:"current_risk_score"`
	RiskLevel         string     `json:"risk_level"`
	LastAppointment   *time.Time `json:"last_appointment,omitempty"`
}

// HighRiskAppointment pairs an upcoming appointment with its prediction.
type HighRiskAppointment struct {
	AppointmentID       uuid.UUID        `json:"appointment_id"`
	PatientID           uuid.UUID        `json:"patient_id"`
	AppointmentDatetime time.Time        `json:"appointment_datetime"`
	Prediction          NoShowPrediction `json:"prediction"`
}
