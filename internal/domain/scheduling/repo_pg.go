package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
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

const apptCols = `id, patient_id, doctor_id, appointment_datetime, duration, status,
	appointment_type, notes, insurance_verified, reminder_sent, confirmation_sent,
	created_at, updated_at`

func (r *repoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDatetime, &a.Duration, &a.Status,
		&a.AppointmentType, &a.Notes, &a.InsuranceVerified, &a.ReminderSent, &a.ConfirmationSent,
		&a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, appointment_datetime, duration, status,
			appointment_type, notes, insurance_verified, reminder_sent, confirmation_sent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDatetime, a.Duration, a.Status,
		a.AppointmentType, a.Notes, a.InsuranceVerified, a.ReminderSent, a.ConfirmationSent)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET appointment_datetime=$2, duration=$3, status=$4, appointment_type=$5,
			notes=$6, insurance_verified=$7, reminder_sent=$8, confirmation_sent=$9, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.AppointmentDatetime, a.Duration, a.Status, a.AppointmentType,
		a.Notes, a.InsuranceVerified, a.ReminderSent, a.ConfirmationSent)
	return err
}

func (r *repoPG) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND appointment_datetime BETWEEN $2 AND $3
		ORDER BY appointment_datetime`, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, after *time.Time) ([]*Appointment, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE patient_id = $1`
	args := []interface{}{patientID}
	if after != nil {
		query += ` AND appointment_datetime > $2`
		args = append(args, *after)
	}
	query += ` ORDER BY appointment_datetime`
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *repoPG) ListBetween(ctx context.Context, start, end time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE appointment_datetime BETWEEN $1 AND $2
		ORDER BY appointment_datetime`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *repoPG) ListNeedingReminders(ctx context.Context, cutoff time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE status IN ($1, $2) AND appointment_datetime <= $3 AND NOT reminder_sent
		ORDER BY appointment_datetime`, StatusScheduled, StatusConfirmed, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *repoPG) ListNeedingConfirmation(ctx context.Context, cutoff time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE status = $1 AND appointment_datetime <= $2 AND NOT confirmation_sent
		ORDER BY appointment_datetime`, StatusScheduled, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
