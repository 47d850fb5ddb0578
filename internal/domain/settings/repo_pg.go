package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medassist/medassist/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// The table holds at most one row, keyed by a constant id.

func (r *repoPG) Get(ctx context.Context) (*ClinicSettings, error) {
	var s ClinicSettings
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT clinic_name, address, phone, email, timezone,
			reminder_hours_before, confirmation_hours_before, no_show_threshold,
			cancellation_policy_hours, auto_reschedule_enabled,
			insurance_verification_required, updated_at
		FROM clinic_settings WHERE id = 1`).Scan(
		&s.ClinicName, &s.Address, &s.Phone, &s.Email, &s.Timezone,
		&s.ReminderHoursBefore, &s.ConfirmationHoursBefore, &s.NoShowThreshold,
		&s.CancellationPolicyHours, &s.AutoRescheduleEnabled,
		&s.InsuranceVerificationRequired, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotSaved
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Save(ctx context.Context, s *ClinicSettings) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinic_settings (id, clinic_name, address, phone, email, timezone,
			reminder_hours_before, confirmation_hours_before, no_show_threshold,
			cancellation_policy_hours, auto_reschedule_enabled, insurance_verification_required)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			clinic_name=EXCLUDED.clinic_name, address=EXCLUDED.address,
			phone=EXCLUDED.phone, email=EXCLUDED.email, timezone=EXCLUDED.timezone,
			reminder_hours_before=EXCLUDED.reminder_hours_before,
			confirmation_hours_before=EXCLUDED.confirmation_hours_before,
			no_show_threshold=EXCLUDED.no_show_threshold,
			cancellation_policy_hours=EXCLUDED.cancellation_policy_hours,
			auto_reschedule_enabled=EXCLUDED.auto_reschedule_enabled,
			insurance_verification_required=EXCLUDED.insurance_verification_required,
			updated_at=NOW()`,
		s.ClinicName, s.Address, s.Phone, s.Email, s.Timezone,
		s.ReminderHoursBefore, s.ConfirmationHoursBefore, s.NoShowThreshold,
		s.CancellationPolicyHours, s.AutoRescheduleEnabled, s.InsuranceVerificationRequired)
	return err
}
