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
	"github.com/fisiocare/backend/internal/repository"
)

type PatientRepo struct {
	DB DBTX
}

const patientColumns = `id, created_at, first_name, last_name, email, password_hash, birth_date, gender, height_cm, weight_kg, diagnosis`

const createPatient = `-- name: CreatePatient
INSERT INTO patients (first_name, last_name, email, password_hash, birth_date, gender, height_cm, weight_kg, diagnosis)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + patientColumns

func (r *PatientRepo) Create(ctx context.Context, arg repository.CreatePatientParams) (models.Patient, error) {
	rows, _ := r.DB.Query(ctx, createPatient,
		arg.FirstName, arg.LastName, arg.Email, arg.PasswordHash,
		arg.BirthDate, arg.Gender, arg.HeightCm, arg.WeightKg, arg.Diagnosis,
	)
	patient, err := pgx.CollectOneRow(rows, rowToPatient)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return patient, apperrors.ErrEmailTaken
		}

		return patient, fmt.Errorf("db error: %w", err)
	}

	return patient, nil
}

const getPatientByID = `-- name: GetPatientByID
SELECT ` + patientColumns + `
FROM patients
WHERE id = $1
`

func (r *PatientRepo) GetByID(ctx context.Context, id int64) (models.Patient, error) {
	rows, _ := r.DB.Query(ctx, getPatientByID, id)
	return collectPatient(rows)
}

const getPatientByEmail = `-- name: GetPatientByEmail
SELECT ` + patientColumns + `
FROM patients
WHERE email = $1
`

func (r *PatientRepo) GetByEmail(ctx context.Context, email string) (models.Patient, error) {
	rows, _ := r.DB.Query(ctx, getPatientByEmail, email)
	return collectPatient(rows)
}

const updatePatient = `-- name: UpdatePatient
UPDATE patients
SET first_name    = COALESCE($2, first_name),
    last_name     = COALESCE($3, last_name),
    email         = COALESCE($4, email),
    password_hash = COALESCE($5, password_hash),
    birth_date    = COALESCE($6, birth_date),
    gender        = COALESCE($7, gender),
    height_cm     = COALESCE($8, height_cm),
    weight_kg     = COALESCE($9, weight_kg),
    diagnosis     = COALESCE($10, diagnosis)
WHERE id = $1
RETURNING ` + patientColumns

func (r *PatientRepo) Update(ctx context.Context, id int64, arg repository.UpdatePatientParams) (models.Patient, error) {
	rows, _ := r.DB.Query(ctx, updatePatient, id,
		arg.FirstName, arg.LastName, arg.Email, arg.PasswordHash,
		arg.BirthDate, arg.Gender, arg.HeightCm, arg.WeightKg, arg.Diagnosis,
	)
	patient, err := pgx.CollectOneRow(rows, rowToPatient)

	switch {
	case err == nil:
		return patient, nil
	case errors.Is(err, pgx.ErrNoRows):
		return patient, apperrors.ErrPatientNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return patient, apperrors.ErrEmailTaken
		}
		return patient, fmt.Errorf("db error: %w", err)
	}
}

const setPatientPassword = `-- name: SetPatientPassword
UPDATE patients
SET password_hash = $2
WHERE id = $1
`

func (r *PatientRepo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.DB.Exec(ctx, setPatientPassword, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPatientNotFound
	}
	return nil
}

const deletePatient = `-- name: DeletePatient
DELETE FROM patients
WHERE id = $1
`

func (r *PatientRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deletePatient, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPatientNotFound
	}
	return nil
}

func collectPatient(rows pgx.Rows) (models.Patient, error) {
	patient, err := pgx.CollectOneRow(rows, rowToPatient)

	switch {
	case err == nil:
		return patient, nil
	case errors.Is(err, pgx.ErrNoRows):
		return patient, apperrors.ErrPatientNotFound
	default:
		return patient, fmt.Errorf("db error: %w", err)
	}
}

func rowToPatient(row pgx.CollectableRow) (models.Patient, error) {
	var p models.Patient
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.FirstName, &p.LastName, &p.Email, &p.PasswordHash,
		&p.BirthDate, &p.Gender, &p.HeightCm, &p.WeightKg, &p.Diagnosis,
	)
	return p, err
}
