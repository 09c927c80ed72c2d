package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
)

type AppointmentRepo struct {
	DB DBTX
}

const createAppointment = `-- name: CreateAppointment
INSERT INTO appointments (treatment_id, scheduled_on, scheduled_at, status)
VALUES ($1, $2, $3, $4)
RETURNING id, treatment_id, scheduled_on, scheduled_at::text, status
`

func (r *AppointmentRepo) Create(ctx context.Context, treatmentID int64, scheduledOn time.Time, scheduledAt string, status string) (models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, createAppointment, treatmentID, scheduledOn, scheduledAt, status)
	appointment, err := pgx.CollectOneRow(rows, rowToAppointment)
	if err != nil {
		return appointment, fmt.Errorf("db error: %w", err)
	}
	return appointment, nil
}

const getAppointment = `-- name: GetAppointment
SELECT id, treatment_id, scheduled_on, scheduled_at::text, status
FROM appointments
WHERE id = $1
`

func (r *AppointmentRepo) Get(ctx context.Context, id int64) (models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, getAppointment, id)
	return collectAppointment(rows)
}

const rescheduleAppointment = `-- name: RescheduleAppointment moving resets confirmation
UPDATE appointments
SET scheduled_on = $2, scheduled_at = $3, status = 'pending'
WHERE id = $1
RETURNING id, treatment_id, scheduled_on, scheduled_at::text, status
`

func (r *AppointmentRepo) Reschedule(ctx context.Context, id int64, scheduledOn time.Time, scheduledAt string) (models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, rescheduleAppointment, id, scheduledOn, scheduledAt)
	return collectAppointment(rows)
}

const setAppointmentStatus = `-- name: SetAppointmentStatus
UPDATE appointments
SET status = $2
WHERE id = $1
`

func (r *AppointmentRepo) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.DB.Exec(ctx, setAppointmentStatus, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAppointmentNotFound
	}
	return nil
}

const deleteAppointment = `-- name: DeleteAppointment
DELETE FROM appointments
WHERE id = $1
`

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteAppointment, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAppointmentNotFound
	}
	return nil
}

const listAppointmentsForPhysio = `-- name: ListAppointmentsForPhysio full agenda
SELECT a.id, a.treatment_id, a.scheduled_on, a.scheduled_at::text, a.status,
       p.id, p.first_name, p.last_name
FROM appointments a
JOIN treatments t ON t.id = a.treatment_id
JOIN patients p ON p.id = t.patient_id
WHERE t.physio_id = $1
ORDER BY a.scheduled_on, a.scheduled_at, a.id
`

func (r *AppointmentRepo) ListForPhysio(ctx context.Context, physioID int64) ([]models.AppointmentWithPatient, error) {
	rows, _ := r.DB.Query(ctx, listAppointmentsForPhysio, physioID)
	appointments, err := pgx.CollectRows(rows, rowToAppointmentWithPatient)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return appointments, nil
}

const listAppointmentsForTreatment = `-- name: ListAppointmentsForTreatment
SELECT a.id, a.treatment_id, a.scheduled_on, a.scheduled_at::text, a.status,
       p.id, p.first_name, p.last_name
FROM appointments a
JOIN treatments t ON t.id = a.treatment_id
JOIN patients p ON p.id = t.patient_id
WHERE a.treatment_id = $1
ORDER BY a.scheduled_on, a.scheduled_at, a.id
`

func (r *AppointmentRepo) ListForTreatment(ctx context.Context, treatmentID int64) ([]models.AppointmentWithPatient, error) {
	rows, _ := r.DB.Query(ctx, listAppointmentsForTreatment, treatmentID)
	appointments, err := pgx.CollectRows(rows, rowToAppointmentWithPatient)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return appointments, nil
}

const listAppointmentsForPatient = `-- name: ListAppointmentsForPatient across all treatments
SELECT a.id, a.treatment_id, a.scheduled_on, a.scheduled_at::text, a.status
FROM appointments a
JOIN treatments t ON t.id = a.treatment_id
WHERE t.patient_id = $1
ORDER BY a.scheduled_on, a.scheduled_at, a.id
`

func (r *AppointmentRepo) ListForPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, listAppointmentsForPatient, patientID)
	appointments, err := pgx.CollectRows(rows, rowToAppointment)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return appointments, nil
}

func collectAppointment(rows pgx.Rows) (models.Appointment, error) {
	appointment, err := pgx.CollectOneRow(rows, rowToAppointment)

	switch {
	case err == nil:
		return appointment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return appointment, apperrors.ErrAppointmentNotFound
	default:
		return appointment, fmt.Errorf("db error: %w", err)
	}
}

func rowToAppointment(row pgx.CollectableRow) (models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.TreatmentID, &a.ScheduledOn, &a.ScheduledAt, &a.Status)
	return a, err
}

func rowToAppointmentWithPatient(row pgx.CollectableRow) (models.AppointmentWithPatient, error) {
	var a models.AppointmentWithPatient
	err := row.Scan(
		&a.ID, &a.TreatmentID, &a.ScheduledOn, &a.ScheduledAt, &a.Status,
		&a.PatientID, &a.PatientFirstName, &a.PatientLastName,
	)
	return a, err
}
