package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/domain/doctor"
	"github.com/medassist/medassist/internal/domain/insurance"
	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/prediction"
	"github.com/medassist/medassist/internal/domain/scheduling"
)

// listPageSize bounds the per-call page when walking full registries.
const listPageSize = 500

type AppointmentStore interface {
	ListBetween(ctx context.Context, start, end time.Time) ([]*scheduling.Appointment, error)
	ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*scheduling.Appointment, error)
}

type PatientStore interface {
	List(ctx context.Context, limit, offset int) ([]*patient.Patient, int, error)
}

type DoctorStore interface {
	List(ctx context.Context, limit, offset int) ([]*doctor.Doctor, int, error)
}

type NoShowStats interface {
	ClinicNoShowRate(ctx context.Context, start, end time.Time) (*prediction.ClinicStats, error)
}

type InsuranceStats interface {
	Statistics(ctx context.Context, start, end time.Time) (*insurance.Statistics, error)
}

// Service computes read-only aggregates over the scheduling, prediction, and
// insurance subsystems. It holds no state of its own.
type Service struct {
	appointments AppointmentStore
	patients     PatientStore
	doctors      DoctorStore
	noShows      NoShowStats
	insurance    InsuranceStats
	avgValue     float64
	now          func() time.Time
}

func NewService(appointments AppointmentStore, patients PatientStore, doctors DoctorStore,
	noShows NoShowStats, insuranceStats InsuranceStats, avgAppointmentValue float64) *Service {
	if avgAppointmentValue <= 0 {
		avgAppointmentValue = 150
	}
	return &Service{
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		noShows:      noShows,
		insurance:    insuranceStats,
		avgValue:     avgAppointmentValue,
		now:          time.Now,
	}
}

func (s *Service) allPatients(ctx context.Context) ([]*patient.Patient, error) {
	var all []*patient.Patient
	for offset := 0; ; offset += listPageSize {
		page, total, err := s.patients.List(ctx, listPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			return all, nil
		}
	}
}

func (s *Service) allDoctors(ctx context.Context) ([]*doctor.Doctor, error) {
	var all []*doctor.Doctor
	for offset := 0; ; offset += listPageSize {
		page, total, err := s.doctors.List(ctx, listPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			return all, nil
		}
	}
}

// AppointmentStatistics breaks down outcomes for appointments in [start, end].
func (s *Service) AppointmentStatistics(ctx context.Context, start, end time.Time) (*AppointmentStatistics, error) {
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := &AppointmentStatistics{
		TotalAppointments: len(appts),
		StatusBreakdown:   make(map[string]int),
		AppointmentTypes:  make(map[string]int),
	}
	for _, a := range appts {
		stats.StatusBreakdown[a.Status]++
		stats.AppointmentTypes[a.AppointmentType]++
	}

	completed := stats.StatusBreakdown[scheduling.StatusCompleted]
	noShows := stats.StatusBreakdown[scheduling.StatusNoShow]
	cancelled := stats.StatusBreakdown[scheduling.StatusCancelled]
	stats.PendingAppointments = stats.StatusBreakdown[scheduling.StatusScheduled] + stats.StatusBreakdown[scheduling.StatusConfirmed]

	attempted := completed + noShows + cancelled
	if attempted > 0 {
		stats.NoShowRate = round2(float64(noShows) / float64(attempted) * 100)
		stats.CompletionRate = round2(float64(completed) / float64(attempted) * 100)
		stats.CancellationRate = round2(float64(cancelled) / float64(attempted) * 100)
	}
	return stats, nil
}

// RevenueAnalytics estimates revenue performance for [start, end].
func (s *Service) RevenueAnalytics(ctx context.Context, start, end time.Time) (*RevenueAnalytics, error) {
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var completed, noShows, cancelled, verified int
	for _, a := range appts {
		switch a.Status {
		case scheduling.StatusCompleted:
			completed++
		case scheduling.StatusNoShow:
			noShows++
		case scheduling.StatusCancelled:
			cancelled++
		}
		if a.InsuranceVerified {
			verified++
		}
	}

	r := &RevenueAnalytics{
		ActualRevenue:            float64(completed) * s.avgValue,
		PotentialRevenue:         float64(len(appts)) * s.avgValue,
		LostRevenueNoShows:       float64(noShows) * s.avgValue,
		LostRevenueCancellations: float64(cancelled) * s.avgValue * 0.5,
		AvgAppointmentValue:      s.avgValue,
	}
	r.TotalLostRevenue = r.LostRevenueNoShows + r.LostRevenueCancellations
	if r.PotentialRevenue > 0 {
		r.RevenueEfficiency = r.ActualRevenue / r.PotentialRevenue * 100
	}
	if len(appts) > 0 {
		r.InsuranceCollectionRate = round2(float64(verified) / float64(len(appts)) * 100)
	}
	return r, nil
}

// NoShowAnalytics details no-show clustering by day, hour, and patient for
// [start, end].
func (s *Service) NoShowAnalytics(ctx context.Context, start, end time.Time) (*NoShowAnalytics, error) {
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	overall, err := s.noShows.ClinicNoShowRate(ctx, start, end)
	if err != nil {
		return nil, err
	}
	patients, err := s.allPatients(ctx)
	if err != nil {
		return nil, err
	}

	result := &NoShowAnalytics{
		OverallStatistics: overall,
		NoShowByDay:       make(map[string]int),
		NoShowByHour:      make(map[int]int),
	}
	for _, p := range patients {
		if p.Status == patient.StatusHighRisk {
			result.HighRiskPatientCount++
		}
	}

	perPatient := make(map[uuid.UUID]int)
	for _, a := range appts {
		if a.Status != scheduling.StatusNoShow {
			continue
		}
		result.NoShowByDay[a.AppointmentDatetime.Weekday().String()]++
		result.NoShowByHour[a.AppointmentDatetime.Hour()]++
		perPatient[a.PatientID]++
	}

	for id, count := range perPatient {
		result.TopNoShowPatients = append(result.TopNoShowPatients, NoShowPatient{PatientID: id, NoShows: count})
	}
	sort.Slice(result.TopNoShowPatients, func(i, j int) bool {
		if result.TopNoShowPatients[i].NoShows != result.TopNoShowPatients[j].NoShows {
			return result.TopNoShowPatients[i].NoShows > result.TopNoShowPatients[j].NoShows
		}
		return result.TopNoShowPatients[i].PatientID.String() < result.TopNoShowPatients[j].PatientID.String()
	})
	if len(result.TopNoShowPatients) > 10 {
		result.TopNoShowPatients = result.TopNoShowPatients[:10]
	}

	result.Recommendations = noShowRecommendations(overall)
	return result, nil
}

func noShowRecommendations(stats *prediction.ClinicStats) []string {
	var recs []string
	if stats.NoShowRate > 25 {
		recs = append(recs,
			"Implement automated reminder system with multiple touchpoints",
			"Consider requiring deposits for high-risk patients")
	} else if stats.NoShowRate > 15 {
		recs = append(recs,
			"Increase reminder frequency for appointments",
			"Implement confirmation calls 24 hours before appointments")
	}
	if stats.NoShows > 10 {
		recs = append(recs,
			"Review and update patient communication preferences",
			"Implement no-show prediction system for proactive intervention")
	}
	return recs
}

// PatientAnalytics summarizes the whole patient base. Returning patients are
// those seen within the past year.
func (s *Service) PatientAnalytics(ctx context.Context) (*PatientAnalytics, error) {
	patients, err := s.allPatients(ctx)
	if err != nil {
		return nil, err
	}

	result := &PatientAnalytics{
		TotalPatients:            len(patients),
		StatusBreakdown:          make(map[string]int),
		CommunicationPreferences: make(map[string]int),
		InsuranceStatusBreakdown: make(map[string]int),
	}
	now := s.now()
	for _, p := range patients {
		result.StatusBreakdown[p.Status]++
		result.CommunicationPreferences[p.PreferredCommunication]++
		result.InsuranceStatusBreakdown[p.InsuranceStatus]++
		switch p.Status {
		case patient.StatusActive:
			result.ActivePatients++
		case patient.StatusHighRisk:
			result.HighRiskPatients++
		}
		if p.LastAppointment == nil {
			result.NewPatients++
		} else if now.Sub(*p.LastAppointment) <= 365*24*time.Hour {
			result.ReturningPatients++
		}
	}
	if len(patients) > 0 {
		result.PatientRetentionRate = float64(result.ReturningPatients) / float64(len(patients)) * 100
	}
	return result, nil
}

// DoctorPerformance reports per-doctor outcomes for [start, end]. Doctors
// with no appointments in the range are omitted.
func (s *Service) DoctorPerformance(ctx context.Context, start, end time.Time) ([]*DoctorPerformance, error) {
	doctors, err := s.allDoctors(ctx)
	if err != nil {
		return nil, err
	}

	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}

	var result []*DoctorPerformance
	for _, d := range doctors {
		appts, err := s.appointments.ListByDoctorBetween(ctx, d.ID, start, end)
		if err != nil {
			return nil, err
		}
		if len(appts) == 0 {
			continue
		}

		perf := &DoctorPerformance{
			DoctorID:          d.ID,
			DoctorName:        d.FullName(),
			Specialty:         d.Specialty,
			TotalAppointments: len(appts),
		}
		for _, a := range appts {
			switch a.Status {
			case scheduling.StatusCompleted:
				perf.CompletedAppointments++
			case scheduling.StatusNoShow:
				perf.NoShows++
			case scheduling.StatusCancelled:
				perf.Cancelled++
			}
		}
		perf.CompletionRate = round2(float64(perf.CompletedAppointments) / float64(len(appts)) * 100)
		perf.NoShowRate = round2(float64(perf.NoShows) / float64(len(appts)) * 100)
		perf.RevenueGenerated = float64(perf.CompletedAppointments) * s.avgValue
		perf.AvgAppointmentsPerDay = float64(len(appts)) / float64(days)
		result = append(result, perf)
	}
	return result, nil
}

// OperationalInsights derives load patterns and recommendations for
// [start, end].
func (s *Service) OperationalInsights(ctx context.Context, start, end time.Time) (*OperationalInsights, error) {
	appts, err := s.appointments.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	insights := &OperationalInsights{
		PeakHours:            peakHours(appts),
		BusiestDays:          busiestDays(appts),
		DurationAnalysis:     analyzeDurations(appts),
		SchedulingEfficiency: analyzeEfficiency(appts),
	}

	stats, err := s.AppointmentStatistics(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if stats.NoShowRate > 20 {
		insights.Recommendations = append(insights.Recommendations,
			"High no-show rate detected. Consider implementing stricter reminder policies.")
	}
	insuranceStats, err := s.insurance.Statistics(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if insuranceStats.VerificationRate < 80 {
		insights.Recommendations = append(insights.Recommendations,
			"Low insurance verification rate. Implement pre-appointment verification.")
	}
	if insights.SchedulingEfficiency.UtilizationRate < 70 {
		insights.Recommendations = append(insights.Recommendations,
			"Low scheduling utilization. Consider adjusting appointment slots.")
	}
	return insights, nil
}

// peakHours returns the five busiest appointment hours.
func peakHours(appts []*scheduling.Appointment) map[int]int {
	counts := make(map[int]int)
	for _, a := range appts {
		counts[a.AppointmentDatetime.Hour()]++
	}
	if len(counts) <= 5 {
		return counts
	}

	type hourCount struct{ hour, count int }
	sorted := make([]hourCount, 0, len(counts))
	for h, c := range counts {
		sorted = append(sorted, hourCount{h, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].hour < sorted[j].hour
	})

	top := make(map[int]int, 5)
	for _, hc := range sorted[:5] {
		top[hc.hour] = hc.count
	}
	return top
}

func busiestDays(appts []*scheduling.Appointment) map[string]int {
	counts := make(map[string]int)
	for _, a := range appts {
		counts[a.AppointmentDatetime.Weekday().String()]++
	}
	return counts
}

func analyzeDurations(appts []*scheduling.Appointment) *DurationAnalysis {
	analysis := &DurationAnalysis{DurationDistribution: make(map[int]int)}
	if len(appts) == 0 {
		return analysis
	}
	total := 0
	for _, a := range appts {
		total += a.Duration
		analysis.DurationDistribution[a.Duration]++
	}
	analysis.AvgDuration = round2(float64(total) / float64(len(appts)))
	return analysis
}

func analyzeEfficiency(appts []*scheduling.Appointment) *SchedulingEfficiency {
	eff := &SchedulingEfficiency{}
	if len(appts) == 0 {
		return eff
	}
	var completed, noShows int
	for _, a := range appts {
		switch a.Status {
		case scheduling.StatusCompleted:
			completed++
		case scheduling.StatusNoShow:
			noShows++
		}
	}
	total := float64(len(appts))
	eff.UtilizationRate = round2(float64(completed) / total * 100)
	noShowRate := float64(noShows) / total * 100
	score := eff.UtilizationRate - noShowRate*0.5
	if score < 0 {
		score = 0
	}
	eff.EfficiencyScore = round2(score)
	return eff
}

// Dashboard assembles every analytics view for [start, end].
func (s *Service) Dashboard(ctx context.Context, start, end time.Time) (*Dashboard, error) {
	apptStats, err := s.AppointmentStatistics(ctx, start, end)
	if err != nil {
		return nil, err
	}
	revenue, err := s.RevenueAnalytics(ctx, start, end)
	if err != nil {
		return nil, err
	}
	noShow, err := s.NoShowAnalytics(ctx, start, end)
	if err != nil {
		return nil, err
	}
	patients, err := s.PatientAnalytics(ctx)
	if err != nil {
		return nil, err
	}
	performance, err := s.DoctorPerformance(ctx, start, end)
	if err != nil {
		return nil, err
	}
	insuranceStats, err := s.insurance.Statistics(ctx, start, end)
	if err != nil {
		return nil, err
	}
	operational, err := s.OperationalInsights(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		AppointmentStatistics: apptStats,
		RevenueAnalytics:      revenue,
		NoShowAnalytics:       noShow,
		PatientAnalytics:      patients,
		DoctorPerformance:     performance,
		InsuranceAnalytics:    insuranceStats,
		OperationalInsights:   operational,
	}, nil
}

// MonthlyReport builds the full rollup for a calendar month.
func (s *Service) MonthlyReport(ctx context.Context, year int, month time.Month) (*MonthlyReport, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	dashboard, err := s.Dashboard(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{
		ReportPeriod: start.Format("January 2006"),
		Dashboard:    dashboard,
		KeyMetrics: &KeyMetrics{
			TotalAppointments: dashboard.AppointmentStatistics.TotalAppointments,
			CompletionRate:    dashboard.AppointmentStatistics.CompletionRate,
			NoShowRate:        dashboard.AppointmentStatistics.NoShowRate,
			RevenueEfficiency: dashboard.RevenueAnalytics.RevenueEfficiency,
			TotalRevenue:      dashboard.RevenueAnalytics.ActualRevenue,
			LostRevenue:       dashboard.RevenueAnalytics.TotalLostRevenue,
			HighRiskPatients:  dashboard.NoShowAnalytics.HighRiskPatientCount,
		},
	}
	report.ActionItems = actionItems(dashboard.AppointmentStatistics, dashboard.RevenueAnalytics)
	return report, nil
}

func actionItems(stats *AppointmentStatistics, revenue *RevenueAnalytics) []string {
	var items []string
	if stats.NoShowRate > 20 {
		items = append(items,
			"Implement automated reminder system",
			"Review and update patient communication preferences")
	}
	if revenue.RevenueEfficiency < 80 {
		items = append(items,
			"Improve insurance verification process",
			"Implement pre-appointment payment collection")
	}
	if stats.CancellationRate > 15 {
		items = append(items,
			"Review cancellation policies",
			"Implement cancellation fees for last-minute cancellations")
	}
	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
