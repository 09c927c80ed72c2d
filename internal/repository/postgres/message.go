package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fisiocare/backend/internal/models"
)

type MessageRepo struct {
	DB DBTX
}

const createMessage = `-- name: CreateMessage
INSERT INTO messages (treatment_id, sender, body)
VALUES ($1, $2, $3)
RETURNING id, treatment_id, sender, body, sent_at
`

func (r *MessageRepo) Create(ctx context.Context, treatmentID int64, sender models.PrincipalKind, body string) (models.Message, error) {
	rows, _ := r.DB.Query(ctx, createMessage, treatmentID, sender, body)
	message, err := pgx.CollectOneRow(rows, rowToMessage)
	if err != nil {
		return message, fmt.Errorf("db error: %w", err)
	}
	return message, nil
}

const listMessagesForTreatment = `-- name: ListMessagesForTreatment
SELECT id, treatment_id, sender, body, sent_at
FROM messages
WHERE treatment_id = $1
ORDER BY sent_at, id
`

func (r *MessageRepo) ListForTreatment(ctx context.Context, treatmentID int64) ([]models.Message, error) {
	rows, _ := r.DB.Query(ctx, listMessagesForTreatment, treatmentID)
	messages, err := pgx.CollectRows(rows, rowToMessage)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return messages, nil
}

const listMessagesForPatient = `-- name: ListMessagesForPatient newest first
SELECT m.id, m.treatment_id, m.sender, m.body, m.sent_at
FROM messages m
JOIN treatments t ON t.id = m.treatment_id
WHERE t.patient_id = $1
ORDER BY m.sent_at DESC, m.id DESC
`

func (r *MessageRepo) ListForPatient(ctx context.Context, patientID int64) ([]models.Message, error) {
	rows, _ := r.DB.Query(ctx, listMessagesForPatient, patientID)
	messages, err := pgx.CollectRows(rows, rowToMessage)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return messages, nil
}

const listConversations = `-- name: ListConversations active patients with their latest message
SELECT p.id, p.first_name, p.last_name, m.body, m.sender, m.sent_at
FROM treatments t
JOIN patients p ON p.id = t.patient_id
JOIN LATERAL (
    SELECT body, sender, sent_at
    FROM messages
    WHERE treatment_id = t.id
    ORDER BY sent_at DESC, id DESC
    LIMIT 1
) m ON true
WHERE t.physio_id = $1 AND t.active
ORDER BY m.sent_at DESC
`

func (r *MessageRepo) ListConversations(ctx context.Context, physioID int64) ([]models.Conversation, error) {
	rows, _ := r.DB.Query(ctx, listConversations, physioID)
	conversations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Conversation, error) {
		var c models.Conversation
		err := row.Scan(&c.PatientID, &c.PatientFirstName, &c.PatientLastName, &c.LastBody, &c.LastSender, &c.LastSentAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return conversations, nil
}

func rowToMessage(row pgx.CollectableRow) (models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.TreatmentID, &m.Sender, &m.Body, &m.SentAt)
	return m, err
}
