package prediction

import (
	"context"
	"errors"

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

func (r *repoPG) Upsert(ctx context.Context, p *NoShowPrediction) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO no_show_prediction (id, patient_id, appointment_id, risk_score, risk_factors, prediction_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (appointment_id) DO UPDATE SET
			patient_id = EXCLUDED.patient_id,
			risk_score = EXCLUDED.risk_score,
			risk_factors = EXCLUDED.risk_factors,
			prediction_date = EXCLUDED.prediction_date`,
		p.ID, p.PatientID, p.AppointmentID, p.RiskScore, p.RiskFactors, p.PredictionDate)
	return err
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*NoShowPrediction, error) {
	var p NoShowPrediction
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, appointment_id, risk_score, risk_factors, prediction_date
		FROM no_show_prediction WHERE appointment_id = $1`, appointmentID).
		Scan(&p.ID, &p.PatientID, &p.AppointmentID, &p.RiskScore, &p.RiskFactors, &p.PredictionDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
