package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
)

type TreatmentRepo struct {
	DB DBTX
}

const createTreatment = `-- name: CreateTreatment
INSERT INTO treatments (physio_id, patient_id)
VALUES ($1, $2)
RETURNING id, physio_id, patient_id, started_on, ended_on, active
`

func (r *TreatmentRepo) Create(ctx context.Context, physioID int64, patientID int64) (models.Treatment, error) {
	rows, _ := r.DB.Query(ctx, createTreatment, physioID, patientID)
	treatment, err := pgx.CollectOneRow(rows, rowToTreatment)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return treatment, apperrors.ErrTreatmentExists
		}

		return treatment, fmt.Errorf("db error: %w", err)
	}

	return treatment, nil
}

const getTreatmentByID = `-- name: GetTreatmentByID
SELECT id, physio_id, patient_id, started_on, ended_on, active
FROM treatments
WHERE id = $1
`

func (r *TreatmentRepo) GetByID(ctx context.Context, id int64) (models.Treatment, error) {
	rows, _ := r.DB.Query(ctx, getTreatmentByID, id)
	return collectTreatment(rows)
}

const getActiveTreatmentByPair = `-- name: GetActiveTreatmentByPair
SELECT id, physio_id, patient_id, started_on, ended_on, active
FROM treatments
WHERE physio_id = $1 AND patient_id = $2 AND active
`

func (r *TreatmentRepo) GetActiveByPair(ctx context.Context, physioID int64, patientID int64) (models.Treatment, error) {
	rows, _ := r.DB.Query(ctx, getActiveTreatmentByPair, physioID, patientID)
	return collectTreatment(rows)
}

const getTreatmentByPair = `-- name: GetTreatmentByPair latest one regardless of state
SELECT id, physio_id, patient_id, started_on, ended_on, active
FROM treatments
WHERE physio_id = $1 AND patient_id = $2
ORDER BY started_on DESC, id DESC
LIMIT 1
`

func (r *TreatmentRepo) GetByPair(ctx context.Context, physioID int64, patientID int64) (models.Treatment, error) {
	rows, _ := r.DB.Query(ctx, getTreatmentByPair, physioID, patientID)
	return collectTreatment(rows)
}

const endTreatment = `-- name: EndTreatment
UPDATE treatments
SET ended_on = CURRENT_DATE, active = false
WHERE physio_id = $1 AND patient_id = $2 AND active
`

func (r *TreatmentRepo) End(ctx context.Context, physioID int64, patientID int64) error {
	tag, err := r.DB.Exec(ctx, endTreatment, physioID, patientID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTreatmentNotFound
	}
	return nil
}

const listRoster = `-- name: ListRoster patients with an active treatment
SELECT p.id, p.first_name, p.last_name
FROM treatments t
JOIN patients p ON p.id = t.patient_id
WHERE t.physio_id = $1 AND t.active
ORDER BY p.last_name, p.first_name
`

func (r *TreatmentRepo) ListRoster(ctx context.Context, physioID int64) ([]models.RosterEntry, error) {
	rows, _ := r.DB.Query(ctx, listRoster, physioID)
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RosterEntry, error) {
		var e models.RosterEntry
		err := row.Scan(&e.PatientID, &e.FirstName, &e.LastName)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}

const getPatientDetail = `-- name: GetPatientDetail patient in active care with visit count
SELECT p.id, p.created_at, p.first_name, p.last_name, p.email, p.password_hash,
       p.birth_date, p.gender, p.height_cm, p.weight_kg, p.diagnosis,
       t.id, t.started_on,
       COUNT(a.id) FILTER (WHERE a.scheduled_on < CURRENT_DATE) AS past_appointments
FROM treatments t
JOIN patients p ON p.id = t.patient_id
LEFT JOIN appointments a ON a.treatment_id = t.id
WHERE t.physio_id = $1 AND t.patient_id = $2 AND t.active
GROUP BY p.id, t.id
`

func (r *TreatmentRepo) GetPatientDetail(ctx context.Context, physioID int64, patientID int64) (models.PatientDetail, error) {
	rows, _ := r.DB.Query(ctx, getPatientDetail, physioID, patientID)
	detail, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.PatientDetail, error) {
		var d models.PatientDetail
		err := row.Scan(
			&d.ID, &d.CreatedAt, &d.FirstName, &d.LastName, &d.Email, &d.PasswordHash,
			&d.BirthDate, &d.Gender, &d.HeightCm, &d.WeightKg, &d.Diagnosis,
			&d.TreatmentID, &d.StartedOn, &d.PastAppointments,
		)
		return d, err
	})

	switch {
	case err == nil:
		return detail, nil
	case errors.Is(err, pgx.ErrNoRows):
		return detail, apperrors.ErrTreatmentNotFound
	default:
		return detail, fmt.Errorf("db error: %w", err)
	}
}

const listTreatmentsForPatient = `-- name: ListTreatmentsForPatient
SELECT t.id, t.physio_id, t.patient_id, t.started_on, t.ended_on, t.active,
       f.first_name, f.last_name
FROM treatments t
JOIN physiotherapists f ON f.id = t.physio_id
WHERE t.patient_id = $1
ORDER BY t.started_on DESC, t.id DESC
`

func (r *TreatmentRepo) ListForPatient(ctx context.Context, patientID int64) ([]models.TreatmentWithPhysio, error) {
	rows, _ := r.DB.Query(ctx, listTreatmentsForPatient, patientID)
	treatments, err := pgx.CollectRows(rows, rowToTreatmentWithPhysio)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return treatments, nil
}

const getTreatmentForPatient = `-- name: GetTreatmentForPatient
SELECT t.id, t.physio_id, t.patient_id, t.started_on, t.ended_on, t.active,
       f.first_name, f.last_name
FROM treatments t
JOIN physiotherapists f ON f.id = t.physio_id
WHERE t.id = $1 AND t.patient_id = $2
`

func (r *TreatmentRepo) GetForPatient(ctx context.Context, treatmentID int64, patientID int64) (models.TreatmentWithPhysio, error) {
	rows, _ := r.DB.Query(ctx, getTreatmentForPatient, treatmentID, patientID)
	treatment, err := pgx.CollectOneRow(rows, rowToTreatmentWithPhysio)

	switch {
	case err == nil:
		return treatment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return treatment, apperrors.ErrTreatmentNotFound
	default:
		return treatment, fmt.Errorf("db error: %w", err)
	}
}

func collectTreatment(rows pgx.Rows) (models.Treatment, error) {
	treatment, err := pgx.CollectOneRow(rows, rowToTreatment)

	switch {
	case err == nil:
		return treatment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return treatment, apperrors.ErrTreatmentNotFound
	default:
		return treatment, fmt.Errorf("db error: %w", err)
	}
}

func rowToTreatment(row pgx.CollectableRow) (models.Treatment, error) {
	var t models.Treatment
	err := row.Scan(&t.ID, &t.PhysioID, &t.PatientID, &t.StartedOn, &t.EndedOn, &t.Active)
	return t, err
}

func rowToTreatmentWithPhysio(row pgx.CollectableRow) (models.TreatmentWithPhysio, error) {
	var t models.TreatmentWithPhysio
	err := row.Scan(
		&t.ID, &t.PhysioID, &t.PatientID, &t.StartedOn, &t.EndedOn, &t.Active,
		&t.PhysioFirstName, &t.PhysioLastName,
	)
	return t, err
}
