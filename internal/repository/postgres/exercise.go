package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
)

type ExerciseRepo struct {
	DB DBTX
}

const createExercise = `-- name: CreateExercise
INSERT INTO exercises (physio_id, name, description, execution, advice, image, video)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, physio_id, name, description, execution, advice, image, video
`

func (r *ExerciseRepo) Create(ctx context.Context, arg repository.CreateExerciseParams) (models.Exercise, error) {
	rows, _ := r.DB.Query(ctx, createExercise,
		arg.PhysioID, arg.Name, arg.Description, arg.Execution, arg.Advice, arg.Image, arg.Video,
	)
	exercise, err := pgx.CollectOneRow(rows, rowToExercise)
	if err != nil {
		return exercise, fmt.Errorf("db error: %w", err)
	}
	return exercise, nil
}

const listExercises = `-- name: ListExercises
SELECT id, physio_id, name, description, execution, advice, image, video
FROM exercises
WHERE physio_id = $1
ORDER BY name, id
`

func (r *ExerciseRepo) List(ctx context.Context, physioID int64) ([]models.Exercise, error) {
	rows, _ := r.DB.Query(ctx, listExercises, physioID)
	exercises, err := pgx.CollectRows(rows, rowToExercise)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return exercises, nil
}

const getExercise = `-- name: GetExercise
SELECT id, physio_id, name, description, execution, advice, image, video
FROM exercises
WHERE physio_id = $1 AND id = $2
`

func (r *ExerciseRepo) Get(ctx context.Context, physioID int64, id int64) (models.Exercise, error) {
	rows, _ := r.DB.Query(ctx, getExercise, physioID, id)
	return collectExercise(rows)
}

const updateExercise = `-- name: UpdateExercise only fields that were sent
UPDATE exercises
SET name        = COALESCE($3, name),
    description = COALESCE($4, description),
    execution   = COALESCE($5, execution),
    advice      = COALESCE($6, advice),
    image       = COALESCE($7, image),
    video       = COALESCE($8, video)
WHERE physio_id = $1 AND id = $2
RETURNING id, physio_id, name, description, execution, advice, image, video
`

func (r *ExerciseRepo) Update(ctx context.Context, physioID int64, id int64, arg repository.UpdateExerciseParams) (models.Exercise, error) {
	rows, _ := r.DB.Query(ctx, updateExercise,
		physioID, id, arg.Name, arg.Description, arg.Execution, arg.Advice, arg.Image, arg.Video,
	)
	return collectExercise(rows)
}

const deleteExercise = `-- name: DeleteExercise
DELETE FROM exercises
WHERE physio_id = $1 AND id = $2
`

func (r *ExerciseRepo) Delete(ctx context.Context, physioID int64, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteExercise, physioID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrExerciseNotFound
	}
	return nil
}

func collectExercise(rows pgx.Rows) (models.Exercise, error) {
	exercise, err := pgx.CollectOneRow(rows, rowToExercise)

	switch {
	case err == nil:
		return exercise, nil
	case errors.Is(err, pgx.ErrNoRows):
		return exercise, apperrors.ErrExerciseNotFound
	default:
		return exercise, fmt.Errorf("db error: %w", err)
	}
}

func rowToExercise(row pgx.CollectableRow) (models.Exercise, error) {
	var e models.Exercise
	err := row.Scan(&e.ID, &e.PhysioID, &e.Name, &e.Description, &e.Execution, &e.Advice, &e.Image, &e.Video)
	return e, err
}
