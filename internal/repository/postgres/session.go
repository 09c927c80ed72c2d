package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
)

type SessionRepo struct {
	DB DBTX
}

const createSession = `-- name: CreateSession
INSERT INTO training_sessions (card_id)
VALUES ($1)
RETURNING id, card_id, held_at, survey
`

func (r *SessionRepo) Create(ctx context.Context, cardID int64) (models.TrainingSession, error) {
	rows, _ := r.DB.Query(ctx, createSession, cardID)
	session, err := pgx.CollectOneRow(rows, rowToSession)
	if err != nil {
		return session, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

const getSession = `-- name: GetSession
SELECT id, card_id, held_at, survey
FROM training_sessions
WHERE id = $1
`

func (r *SessionRepo) Get(ctx context.Context, id int64) (models.TrainingSession, error) {
	rows, _ := r.DB.Query(ctx, getSession, id)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, apperrors.ErrSessionNotFound
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const addSessionExercise = `-- name: AddSessionExercise
INSERT INTO session_exercises (session_id, exercise_id, actual_sets, actual_reps, notes)
VALUES ($1, $2, $3, $4, $5)
`

func (r *SessionRepo) AddExercise(ctx context.Context, arg models.SessionExercise) error {
	_, err := r.DB.Exec(ctx, addSessionExercise,
		arg.SessionID, arg.ExerciseID, arg.ActualSets, arg.ActualReps, arg.Notes,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperrors.ErrSessionExerciseExists
		}

		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const listSessionExercises = `-- name: ListSessionExercises performed vs assigned dosage
SELECT se.exercise_id, e.name, se.actual_sets, se.actual_reps, se.notes,
       COALESCE(ce.sets, 0), COALESCE(ce.reps, 0)
FROM session_exercises se
JOIN training_sessions s ON s.id = se.session_id
JOIN exercises e ON e.id = se.exercise_id
LEFT JOIN card_exercises ce ON ce.card_id = s.card_id AND ce.exercise_id = se.exercise_id
WHERE se.session_id = $1
ORDER BY e.name, se.exercise_id
`

func (r *SessionRepo) ListExercises(ctx context.Context, sessionID int64) ([]models.SessionExerciseDetail, error) {
	rows, _ := r.DB.Query(ctx, listSessionExercises, sessionID)
	details, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SessionExerciseDetail, error) {
		var d models.SessionExerciseDetail
		err := row.Scan(
			&d.ExerciseID, &d.Name, &d.ActualSets, &d.ActualReps, &d.Notes,
			&d.AssignedSets, &d.AssignedReps,
		)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return details, nil
}

const updateSessionExercise = `-- name: UpdateSessionExercise only fields that were sent
UPDATE session_exercises
SET actual_sets = COALESCE($3, actual_sets),
    actual_reps = COALESCE($4, actual_reps),
    notes       = COALESCE($5, notes)
WHERE session_id = $1 AND exercise_id = $2
`

func (r *SessionRepo) UpdateExercise(ctx context.Context, sessionID int64, exerciseID int64, arg repository.UpdateSessionExerciseParams) error {
	tag, err := r.DB.Exec(ctx, updateSessionExercise, sessionID, exerciseID, arg.ActualSets, arg.ActualReps, arg.Notes)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionExerciseNotFound
	}
	return nil
}

const saveSessionSurvey = `-- name: SaveSessionSurvey
UPDATE training_sessions
SET survey = $2
WHERE id = $1
`

func (r *SessionRepo) SaveSurvey(ctx context.Context, sessionID int64, survey json.RawMessage) error {
	tag, err := r.DB.Exec(ctx, saveSessionSurvey, sessionID, survey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

const listSessionsForCard = `-- name: ListSessionsForCard
SELECT id, card_id, held_at, survey
FROM training_sessions
WHERE card_id = $1
ORDER BY held_at, id
`

func (r *SessionRepo) ListForCard(ctx context.Context, cardID int64) ([]models.TrainingSession, error) {
	rows, _ := r.DB.Query(ctx, listSessionsForCard, cardID)
	sessions, err := pgx.CollectRows(rows, rowToSession)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sessions, nil
}

const listSessionsForPatient = `-- name: ListSessionsForPatient newest first with card and physio
SELECT s.id, s.held_at, c.id, c.name, c.kind, f.first_name, f.last_name
FROM training_sessions s
JOIN training_cards c ON c.id = s.card_id
JOIN treatments t ON t.id = c.treatment_id
JOIN physiotherapists f ON f.id = t.physio_id
WHERE t.patient_id = $1
ORDER BY s.held_at DESC, s.id DESC
`

func (r *SessionRepo) ListForPatient(ctx context.Context, patientID int64) ([]models.SessionSummary, error) {
	rows, _ := r.DB.Query(ctx, listSessionsForPatient, patientID)
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SessionSummary, error) {
		var s models.SessionSummary
		err := row.Scan(&s.ID, &s.HeldAt, &s.CardID, &s.CardName, &s.CardKind, &s.PhysioFirstName, &s.PhysioLastName)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return summaries, nil
}

const listSessionsForTreatment = `-- name: ListSessionsForTreatment grouped per card on the way out
SELECT c.id, c.name, s.id, s.card_id, s.held_at, s.survey
FROM training_cards c
JOIN training_sessions s ON s.card_id = c.id
WHERE c.treatment_id = $1
ORDER BY c.id, s.held_at, s.id
`

func (r *SessionRepo) ListProgressForTreatment(ctx context.Context, treatmentID int64) ([]models.CardProgress, error) {
	rows, _ := r.DB.Query(ctx, listSessionsForTreatment, treatmentID)

	type progressRow struct {
		cardID   int64
		cardName string
		session  models.TrainingSession
	}

	collected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (progressRow, error) {
		var p progressRow
		err := row.Scan(&p.cardID, &p.cardName, &p.session.ID, &p.session.CardID, &p.session.HeldAt, &p.session.Survey)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var progress []models.CardProgress
	for _, row := range collected {
		if len(progress) == 0 || progress[len(progress)-1].CardID != row.cardID {
			progress = append(progress, models.CardProgress{CardID: row.cardID, CardName: row.cardName})
		}
		last := &progress[len(progress)-1]
		last.Sessions = append(last.Sessions, row.session)
	}

	return progress, nil
}

func rowToSession(row pgx.CollectableRow) (models.TrainingSession, error) {
	var s models.TrainingSession
	err := row.Scan(&s.ID, &s.CardID, &s.HeldAt, &s.Survey)
	return s, err
}
