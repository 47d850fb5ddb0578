package analytics

import (
	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/insurance"
	"github.com/medassist/medassist/internal/domain/prediction"
)

// AppointmentStatistics breaks down appointment outcomes over a range. Rates
// are computed over attempted appointments (completed, no-show, cancelled);
// still-pending bookings do not dilute them.
type AppointmentStatistics struct {
	TotalAppointments   int            `json:"total_appointments"`
	StatusBreakdown     map[string]int `json:"status_breakdown"`
	NoShowRate          float64        `json:"no_show_rate"`
	CompletionRate      float64        `json:"completion_rate"`
	CancellationRate    float64        `json:"cancellation_rate"`
	AppointmentTypes    map[string]int `json:"appointment_types"`
	PendingAppointments int            `json:"pending_appointments"`
}

// RevenueAnalytics estimates financial performance at the clinic's average
// appointment value. Half of cancelled revenue is assumed recoverable.
type RevenueAnalytics struct {
	ActualRevenue            float64 `json:"actual_revenue"`
	PotentialRevenue         float64 `json:"potential_revenue"`
	LostRevenueNoShows       float64 `json:"lost_revenue_no_shows"`
	LostRevenueCancellations float64 `json:"lost_revenue_cancellations"`
	TotalLostRevenue         float64 `json:"total_lost_revenue"`
	RevenueEfficiency        float64 `json:"revenue_efficiency"`
	InsuranceCollectionRate  float64 `json:"insurance_collection_rate"`
	AvgAppointmentValue      float64 `json:"avg_appointment_value"`
}

// NoShowPatient pairs a patient with their no-show count in the range.
type NoShowPatient struct {
	PatientID uuid.UUID `json:"patient_id"`
	NoShows   int       `json:"no_shows"`
}

// NoShowAnalytics details where and when no-shows cluster.
type NoShowAnalytics struct {
	OverallStatistics    *prediction.ClinicStats `json:"overall_statistics"`
	HighRiskPatientCount int                     `json:"high_risk_patients_count"`
	NoShowByDay          map[string]int          `json:"no_show_by_day"`
	NoShowByHour         map[int]int             `json:"no_show_by_hour"`
	TopNoShowPatients    []NoShowPatient         `json:"top_no_show_patients"`
	Recommendations      []string                `json:"recommendations"`
}

// PatientAnalytics summarizes the patient base.
type PatientAnalytics struct {
	TotalPatients            int            `json:"total_patients"`
	StatusBreakdown          map[string]int `json:"status_breakdown"`
	CommunicationPreferences map[string]int `json:"communication_preferences"`
	InsuranceStatusBreakdown map[string]int `json:"insurance_status_breakdown"`
	ActivePatients           int            `json:"active_patients"`
	HighRiskPatients         int            `json:"high_risk_patients"`
	NewPatients              int            `json:"new_patients"`
	ReturningPatients        int            `json:"returning_patients"`
	PatientRetentionRate     float64        `json:"patient_retention_rate"`
}

// DoctorPerformance reports one doctor's appointment outcomes over a range.
type DoctorPerformance struct {
	DoctorID              uuid.UUID `json:"doctor_id"`
	DoctorName            string    `json:"doctor_name"`
	Specialty             string    `json:"specialty"`
	TotalAppointments     int       `json:"total_appointments"`
	CompletedAppointments int       `json:"completed_appointments"`
	NoShows               int       `json:"no_shows"`
	Cancelled             int       `json:"cancelled"`
	CompletionRate        float64   `json:"completion_rate"`
	NoShowRate            float64   `json:"no_show_rate"`
	RevenueGenerated      float64   `json:"revenue_generated"`
	AvgAppointmentsPerDay float64   `json:"avg_appointments_per_day"`
}

// DurationAnalysis describes how appointment lengths distribute.
type DurationAnalysis struct {
	AvgDuration          float64     `json:"avg_duration"`
	DurationDistribution map[int]int `json:"duration_distribution"`
}

// SchedulingEfficiency scores how well booked slots convert to completed
// visits. No-shows drag the efficiency score at half weight.
type SchedulingEfficiency struct {
	UtilizationRate float64 `json:"utilization_rate"`
	EfficiencyScore float64 `json:"efficiency_score"`
}

// OperationalInsights collects load patterns and recommendations.
type OperationalInsights struct {
	PeakHours            map[int]int           `json:"peak_hours"`
	BusiestDays          map[string]int        `json:"busiest_days"`
	DurationAnalysis     *DurationAnalysis     `json:"appointment_duration_analysis"`
	SchedulingEfficiency *SchedulingEfficiency `json:"scheduling_efficiency"`
	Recommendations      []string              `json:"recommendations"`
}

// Dashboard aggregates every analytics view for a range.
type Dashboard struct {
	AppointmentStatistics *AppointmentStatistics `json:"appointment_statistics"`
	RevenueAnalytics      *RevenueAnalytics      `json:"revenue_analytics"`
	NoShowAnalytics       *NoShowAnalytics       `json:"no_show_analytics"`
	PatientAnalytics      *PatientAnalytics      `json:"patient_analytics"`
	DoctorPerformance     []*DoctorPerformance   `json:"doctor_performance"`
	InsuranceAnalytics    *insurance.Statistics  `json:"insurance_analytics"`
	OperationalInsights   *OperationalInsights   `json:"operational_insights"`
}

// KeyMetrics are the headline numbers of a monthly report.
type KeyMetrics struct {
	TotalAppointments int     `json:"total_appointments"`
	CompletionRate    float64 `json:"completion_rate"`
	NoShowRate        float64 `json:"no_show_rate"`
	RevenueEfficiency float64 `json:"revenue_efficiency"`
	TotalRevenue      float64 `json:"total_revenue"`
	LostRevenue       float64 `json:"lost_revenue"`
	HighRiskPatients  int     `json:"high_risk_patients"`
}

// MonthlyReport is the full monthly rollup.
type MonthlyReport struct {
	ReportPeriod string      `json:"report_period"`
	Dashboard    *Dashboard  `json:"dashboard_data"`
	KeyMetrics   *KeyMetrics `json:"key_metrics"`
	ActionItems  []string    `json:"action_items"`
}
