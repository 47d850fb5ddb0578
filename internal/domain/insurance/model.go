package insurance

// Verification outcome statuses.
const (
	StatusVerified = "verified"
	StatusInvalid  = "invalid"
	StatusExpired  = "expired"
)

// Coverage describes a plan's simulated benefit terms.
type Coverage struct {
	Active     bool    `json:"active"`
	Copay      float64 `json:"copay"`
	Deductible float64 `json:"deductible"`
	Reason     string  `json:"reason,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Verification is the outcome of a coverage check.
type Verification struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Coverage *Coverage `json:"coverage,omitempty"`
}

// Responsibility splits an appointment's cost between insurance and the
// patient.
type Responsibility struct {
	TotalCost           float64 `json:"total_cost"`
	InsuranceCoverage   float64 `json:"insurance_coverage"`
	Patient             float64 `json:"patient_responsibility"`
	Copay               float64 `json:"copay"`
	Deductible          float64 `json:"deductible"`
	RemainingDeductible float64 `json:"remaining_deductible"`
	PaymentRequired     bool    `json:"payment_required"`
	InsuranceStatus     string  `json:"insurance_status"`
	Message             string  `json:"message"`
}

// PaymentOption is one way a patient can settle a balance.
type PaymentOption struct {
	Type                string  `json:"type"`
	Description         string  `json:"description"`
	Amount              float64 `json:"amount"`
	Available           bool    `json:"available"`
	Installments        int     `json:"installments,omitempty"`
	RequiresApplication bool    `json:"requires_application,omitempty"`
}

// Statistics summarizes verification coverage over a date range.
type Statistics struct {
	TotalAppointments    int     `json:"total_appointments"`
	VerifiedInsurance    int     `json:"verified_insurance"`
	UnverifiedInsurance  int     `json:"unverified_insurance"`
	VerificationRate     float64 `json:"verification_rate"`
	PotentialRevenueLoss float64 `json:"potential_revenue_loss"`
	Recommendation       string  `json:"recommendation"`
}
