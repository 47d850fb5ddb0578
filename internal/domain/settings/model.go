package settings

import "time"

// ClinicSettings is the clinic's single row of operational configuration.
type ClinicSettings struct {
	ClinicName                    string    `db:"clinic_name" json:"clinic_name"`
	Address                       string    `db:"address" json:"address"`
	Phone                         string    `db:"phone" json:"phone"`
	Email                         string    `db:"email" json:"email"`
	Timezone                      string    `db:"timezone" json:"timezone"`
	ReminderHoursBefore           int       `db:"reminder_hours_before" json:"reminder_hours_before"`
	ConfirmationHoursBefore       int       `db:"confirmation_hours_before" json:"confirmation_hours_before"`
	NoShowThreshold               int       `db:"no_show_threshold" json:"no_show_threshold"`
	CancellationPolicyHours       int       `db:"cancellation_policy_hours" json:"cancellation_policy_hours"`
	AutoRescheduleEnabled         bool      `db:"auto_reschedule_enabled" json:"auto_reschedule_enabled"`
	InsuranceVerificationRequired bool      `db:"insurance_verification_required" json:"insurance_verification_required"`
	UpdatedAt                     time.Time `db:"updated_at" json:"updated_at"`
}
