package prediction

import (
	"strings"
	"time"

	"github.com/medassist/medassist/internal/domain/patient"
	"github.com/medassist/medassist/internal/domain/scheduling"
)

// Weights of the four sub-scores. They sum to 1.0 so the combined score
// stays in [0,1] before the final clamp.
const (
	weightHistorical  = 0.40
	weightTiming      = 0.25
	weightDemographic = 0.20
	weightFinancial   = 0.15
)

// factorThreshold is the sub-score above which its label is attached.
const factorThreshold = 0.30

// unreliableProviders carry an elevated financial risk signal.
var unreliableProviders = map[string]bool{
	"medicaid": true, "medicare": true, "self_pay": true,
}

// historicalRisk scores the patient's past no-show behavior. Patients with
// fewer than two appointments get a fixed cold-start value. Otherwise the
// overall no-show fraction is blended 30/70 with the fraction over the last
// 90 days, doubled, and clamped.
func historicalRisk(history []*scheduling.Appointment, now time.Time) float64 {
	if len(history) < 2 {
		return 0.3
	}

	noShows := 0
	for _, a := range history {
		if a.Status == scheduling.StatusNoShow {
			noShows++
		}
	}
	rate := float64(noShows) / float64(len(history))

	cutoff := now.AddDate(0, 0, -90)
	recentTotal, recentNoShows := 0, 0
	for _, a := range history {
		if a.AppointmentDatetime.After(cutoff) {
			recentTotal++
			if a.Status == scheduling.StatusNoShow {
				recentNoShows++
			}
		}
	}
	if recentTotal > 0 {
		recentRate := float64(recentNoShows) / float64(recentTotal)
		rate = rate*0.3 + recentRate*0.7
	}

	return clamp01(rate * 2)
}

// timingRisk scores the appointment's position in the week and day, and how
// far in advance it was booked. The 30-day and 60-day advance penalties are
// independent checks: a booking more than 60 days out accrues both.
func timingRisk(a *scheduling.Appointment) float64 {
	risk := 0.0
	at := a.AppointmentDatetime

	switch at.Weekday() {
	case time.Monday:
		risk += 0.10
	case time.Friday:
		risk += 0.15
	case time.Saturday, time.Sunday:
		risk += 0.20
	}

	hour := at.Hour()
	if hour < 9 || hour > 16 {
		risk += 0.10
	} else if hour == 12 {
		risk += 0.05
	}

	daysAdvance := int(at.Sub(a.CreatedAt).Hours() / 24)
	if daysAdvance > 30 {
		risk += 0.10
	}
	if daysAdvance > 60 {
		risk += 0.20
	}
	if daysAdvance < 1 {
		risk += 0.15
	}

	return clamp01(risk)
}

// demographicRisk scores patient attributes that correlate with missed
// appointments.
func demographicRisk(p *patient.Patient, now time.Time) float64 {
	risk := 0.0

	age := p.Age(now)
	switch {
	case age < 25:
		risk += 0.20
	case age < 35:
		risk += 0.10
	case age > 65:
		risk -= 0.10
	}

	if p.PreferredCommunication == "email" {
		risk += 0.05
	}
	if p.Status == patient.StatusHighRisk {
		risk += 0.30
	}
	if len(strings.TrimSpace(p.EmergencyContact)) < 5 {
		risk += 0.10
	}

	return clamp01(risk)
}

// financialRisk scores insurance verification and coverage signals.
func financialRisk(p *patient.Patient, a *scheduling.Appointment) float64 {
	risk := 0.0

	if !a.InsuranceVerified {
		risk += 0.20
	}
	if unreliableProviders[strings.ToLower(p.InsuranceProvider)] {
		risk += 0.10
	}
	if len(p.InsuranceNumber) < 5 {
		risk += 0.15
	}

	return clamp01(risk)
}

// score combines the four sub-scores and collects factor labels for every
// sub-score strictly above the significance threshold, in fixed order.
func score(p *patient.Patient, a *scheduling.Appointment, history []*scheduling.Appointment, now time.Time) (float64, []string) {
	var factors []string
	total := 0.0

	h := historicalRisk(history, now)
	total += h * weightHistorical
	if h > factorThreshold {
		factors = append(factors, FactorHistorical)
	}

	t := timingRisk(a)
	total += t * weightTiming
	if t > factorThreshold {
		factors = append(factors, FactorTiming)
	}

	d := demographicRisk(p, now)
	total += d * weightDemographic
	if d > factorThreshold {
		factors = append(factors, FactorDemographic)
	}

	f := financialRisk(p, a)
	total += f * weightFinancial
	if f > factorThreshold {
		factors = append(factors, FactorFinancial)
	}

	return clamp01(total), factors
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
