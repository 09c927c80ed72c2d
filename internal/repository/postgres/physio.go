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

type PhysioRepo struct {
	DB DBTX
}

const createPhysio = `-- name: CreatePhysio
INSERT INTO physiotherapists (first_name, last_name, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, first_name, last_name, email, password_hash
`

func (r *PhysioRepo) Create(ctx context.Context, arg repository.CreatePhysioParams) (models.Physio, error) {
	rows, _ := r.DB.Query(ctx, createPhysio, arg.FirstName, arg.LastName, arg.Email, arg.PasswordHash)
	physio, err := pgx.CollectOneRow(rows, rowToPhysio)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return physio, apperrors.ErrEmailTaken
		}

		return physio, fmt.Errorf("db error: %w", err)
	}

	return physio, nil
}

const getPhysioByID = `-- name: GetPhysioByID
SELECT id, created_at, first_name, last_name, email, password_hash
FROM physiotherapists
WHERE id = $1
`

func (r *PhysioRepo) GetByID(ctx context.Context, id int64) (models.Physio, error) {
	rows, _ := r.DB.Query(ctx, getPhysioByID, id)
	return collectPhysio(rows)
}

const getPhysioByEmail = `-- name: GetPhysioByEmail
SELECT id, created_at, first_name, last_name, email, password_hash
FROM physiotherapists
WHERE email = $1
`

func (r *PhysioRepo) GetByEmail(ctx context.Context, email string) (models.Physio, error) {
	rows, _ := r.DB.Query(ctx, getPhysioByEmail, email)
	return collectPhysio(rows)
}

const updatePhysio = `-- name: UpdatePhysio
UPDATE physiotherapists
SET first_name = COALESCE($2, first_name),
    last_name  = COALESCE($3, last_name),
    email      = COALESCE($4, email)
WHERE id = $1
RETURNING id, created_at, first_name, last_name, email, password_hash
`

func (r *PhysioRepo) Update(ctx context.Context, id int64, arg repository.UpdatePhysioParams) (models.Physio, error) {
	rows, _ := r.DB.Query(ctx, updatePhysio, id, arg.FirstName, arg.LastName, arg.Email)
	physio, err := pgx.CollectOneRow(rows, rowToPhysio)

	switch {
	case err == nil:
		return physio, nil
	case errors.Is(err, pgx.ErrNoRows):
		return physio, apperrors.ErrPhysioNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return physio, apperrors.ErrEmailTaken
		}
		return physio, fmt.Errorf("db error: %w", err)
	}
}

const setPhysioPassword = `-- name: SetPhysioPassword
UPDATE physiotherapists
SET password_hash = $2
WHERE id = $1
`

func (r *PhysioRepo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.DB.Exec(ctx, setPhysioPassword, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPhysioNotFound
	}
	return nil
}

func collectPhysio(rows pgx.Rows) (models.Physio, error) {
	physio, err := pgx.CollectOneRow(rows, rowToPhysio)

	switch {
	case err == nil:
		return physio, nil
	case errors.Is(err, pgx.ErrNoRows):
		return physio, apperrors.ErrPhysioNotFound
	default:
		return physio, fmt.Errorf("db error: %w", err)
	}
}

func rowToPhysio(row pgx.CollectableRow) (models.Physio, error) {
	var p models.Physio
	err := row.Scan(&p.ID, &p.CreatedAt, &p.FirstName, &p.LastName, &p.Email, &p.PasswordHash)
	return p, err
}
