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

type TrainingCardRepo struct {
	DB DBTX
}

const createCard = `-- name: CreateCard
INSERT INTO training_cards (treatment_id, name, kind, notes)
VALUES ($1, $2, $3, $4)
RETURNING id, treatment_id, name, kind, notes
`

func (r *TrainingCardRepo) Create(ctx context.Context, arg repository.CreateCardParams) (models.TrainingCard, error) {
	rows, _ := r.DB.Query(ctx, createCard, arg.TreatmentID, arg.Name, arg.Kind, arg.Notes)
	card, err := pgx.CollectOneRow(rows, rowToCard)
	if err != nil {
		return card, fmt.Errorf("db error: %w", err)
	}
	return card, nil
}

const getCard = `-- name: GetCard
SELECT id, treatment_id, name, kind, notes
FROM training_cards
WHERE id = $1
`

func (r *TrainingCardRepo) Get(ctx context.Context, id int64) (models.TrainingCard, error) {
	rows, _ := r.DB.Query(ctx, getCard, id)
	return collectCard(rows)
}

const updateCard = `-- name: UpdateCard only fields that were sent
UPDATE training_cards
SET name  = COALESCE($2, name),
    kind  = COALESCE($3, kind),
    notes = COALESCE($4, notes)
WHERE id = $1
RETURNING id, treatment_id, name, kind, notes
`

func (r *TrainingCardRepo) Update(ctx context.Context, id int64, arg repository.UpdateCardParams) (models.TrainingCard, error) {
	rows, _ := r.DB.Query(ctx, updateCard, id, arg.Name, arg.Kind, arg.Notes)
	return collectCard(rows)
}

const deleteCard = `-- name: DeleteCard
DELETE FROM training_cards
WHERE id = $1
`

func (r *TrainingCardRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteCard, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCardNotFound
	}
	return nil
}

const listCardsForTreatment = `-- name: ListCardsForTreatment
SELECT id, treatment_id, name, kind, notes
FROM training_cards
WHERE treatment_id = $1
ORDER BY id
`

func (r *TrainingCardRepo) ListForTreatment(ctx context.Context, treatmentID int64) ([]models.TrainingCard, error) {
	rows, _ := r.DB.Query(ctx, listCardsForTreatment, treatmentID)
	cards, err := pgx.CollectRows(rows, rowToCard)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cards, nil
}

const listCardsForPatient = `-- name: ListCardsForPatient across all treatments
SELECT c.id, c.treatment_id, c.name, c.kind, c.notes
FROM training_cards c
JOIN treatments t ON t.id = c.treatment_id
WHERE t.patient_id = $1
ORDER BY c.id
`

func (r *TrainingCardRepo) ListForPatient(ctx context.Context, patientID int64) ([]models.TrainingCard, error) {
	rows, _ := r.DB.Query(ctx, listCardsForPatient, patientID)
	cards, err := pgx.CollectRows(rows, rowToCard)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cards, nil
}

const addCardExercise = `-- name: AddCardExercise
INSERT INTO card_exercises (card_id, exercise_id, sets, reps)
VALUES ($1, $2, $3, $4)
`

func (r *TrainingCardRepo) AddExercise(ctx context.Context, arg models.CardExercise) error {
	_, err := r.DB.Exec(ctx, addCardExercise, arg.CardID, arg.ExerciseID, arg.Sets, arg.Reps)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperrors.ErrCardExerciseExists
		}

		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const listCardExercises = `-- name: ListCardExercises assignments with the exercise sheet
SELECT e.id, e.physio_id, e.name, e.description, e.execution, e.advice, e.image, e.video,
       ce.sets, ce.reps
FROM card_exercises ce
JOIN exercises e ON e.id = ce.exercise_id
WHERE ce.card_id = $1
ORDER BY e.name, e.id
`

func (r *TrainingCardRepo) ListExercises(ctx context.Context, cardID int64) ([]models.CardExerciseDetail, error) {
	rows, _ := r.DB.Query(ctx, listCardExercises, cardID)
	details, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CardExerciseDetail, error) {
		var d models.CardExerciseDetail
		err := row.Scan(
			&d.ID, &d.PhysioID, &d.Name, &d.Description, &d.Execution, &d.Advice, &d.Image, &d.Video,
			&d.Sets, &d.Reps,
		)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return details, nil
}

const listCardAssignments = `-- name: ListCardAssignments bare dosage rows
SELECT card_id, exercise_id, sets, reps
FROM card_exercises
WHERE card_id = $1
ORDER BY exercise_id
`

func (r *TrainingCardRepo) ListAssignments(ctx context.Context, cardID int64) ([]models.CardExercise, error) {
	rows, _ := r.DB.Query(ctx, listCardAssignments, cardID)
	assignments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CardExercise, error) {
		var a models.CardExercise
		err := row.Scan(&a.CardID, &a.ExerciseID, &a.Sets, &a.Reps)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return assignments, nil
}

const updateCardExercise = `-- name: UpdateCardExercise only fields that were sent
UPDATE card_exercises
SET sets = COALESCE($3, sets),
    reps = COALESCE($4, reps)
WHERE card_id = $1 AND exercise_id = $2
`

func (r *TrainingCardRepo) UpdateExercise(ctx context.Context, cardID int64, exerciseID int64, arg repository.UpdateCardExerciseParams) error {
	tag, err := r.DB.Exec(ctx, updateCardExercise, cardID, exerciseID, arg.Sets, arg.Reps)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCardExerciseNotFound
	}
	return nil
}

const removeCardExercise = `-- name: RemoveCardExercise
DELETE FROM card_exercises
WHERE card_id = $1 AND exercise_id = $2
`

func (r *TrainingCardRepo) RemoveExercise(ctx context.Context, cardID int64, exerciseID int64) error {
	tag, err := r.DB.Exec(ctx, removeCardExercise, cardID, exerciseID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCardExerciseNotFound
	}
	return nil
}

func collectCard(rows pgx.Rows) (models.TrainingCard, error) {
	card, err := pgx.CollectOneRow(rows, rowToCard)

	switch {
	case err == nil:
		return card, nil
	case errors.Is(err, pgx.ErrNoRows):
		return card, apperrors.ErrCardNotFound
	default:
		return card, fmt.Errorf("db error: %w", err)
	}
}

func rowToCard(row pgx.CollectableRow) (models.TrainingCard, error) {
	var c models.TrainingCard
	err := row.Scan(&c.ID, &c.TreatmentID, &c.Name, &c.Kind, &c.Notes)
	return c, err
}
