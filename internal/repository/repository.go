package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fisiocare/backend/internal/models"
)

// Storage bundles every repository over one database handle.
// InTx runs fn with repositories bound to a single transaction.
type Storage interface {
	Physio() PhysioRepo
	Patient() PatientRepo
	Refresh() RefreshTokenRepo
	Treatment() TreatmentRepo
	Exercise() ExerciseRepo
	Appointment() AppointmentRepo
	Message() MessageRepo
	Card() TrainingCardRepo
	Session() SessionRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}

type CreatePhysioParams struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

type UpdatePhysioParams struct {
	FirstName *string
	LastName  *string
	Email     *string
}

type PhysioRepo interface {
	// Create physiotherapist account
	// Must return apperrors.ErrEmailTaken if the email is already registered
	Create(ctx context.Context, arg CreatePhysioParams) (models.Physio, error)

	// Both must return apperrors.ErrPhysioNotFound if no row matches
	GetByID(ctx context.Context, id int64) (models.Physio, error)
	GetByEmail(ctx context.Context, email string) (models.Physio, error)

	Update(ctx context.Context, id int64, arg UpdatePhysioParams) (models.Physio, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
}

type CreatePatientParams struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash *string
	BirthDate    time.Time
	Gender       string
	HeightCm     decimal.Decimal
	WeightKg     decimal.Decimal
	Diagnosis    string
}

type UpdatePatientParams struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
	BirthDate    *time.Time
	Gender       *string
	HeightCm     *decimal.Decimal
	WeightKg     *decimal.Decimal
	Diagnosis    *string
}

type PatientRepo interface {
	// Create patient record, with or without credentials
	// Must return apperrors.ErrEmailTaken if the email is already registered
	Create(ctx context.Context, arg CreatePatientParams) (models.Patient, error)

	// Both must return apperrors.ErrPatientNotFound if no row matches
	GetByID(ctx context.Context, id int64) (models.Patient, error)
	GetByEmail(ctx context.Context, email string) (models.Patient, error)

	Update(ctx context.Context, id int64, arg UpdatePatientParams) (models.Patient, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// RefreshTokenRepo is the refresh token ledger.
// Rows are never deleted, revocation flips revoked_at.
type RefreshTokenRepo interface {
	Create(ctx context.Context, token models.RefreshToken) error

	// Must return apperrors.ErrRefreshTokenNotFound if the token string is unknown
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Revoke a single token. Already revoked rows keep their original revoked_at.
	// Must return apperrors.ErrRefreshTokenNotFound if the token string is unknown.
	Revoke(ctx context.Context, tokenString string) error

	// Revoke every live token of the principal, returns how many were revoked
	RevokeAllForPrincipal(ctx context.Context, kind models.PrincipalKind, principalID int64) (int64, error)
}

type TreatmentRepo interface {
	// Open a treatment between the pair
	// Must return apperrors.ErrTreatmentExists if an active one already links them
	Create(ctx context.Context, physioID int64, patientID int64) (models.Treatment, error)

	GetByID(ctx context.Context, id int64) (models.Treatment, error)
	GetActiveByPair(ctx context.Context, physioID int64, patientID int64) (models.Treatment, error)
	// Latest treatment for the pair regardless of state, for ended vs missing checks
	GetByPair(ctx context.Context, physioID int64, patientID int64) (models.Treatment, error)

	// Close the active treatment: set end date, clear the active flag
	End(ctx context.Context, physioID int64, patientID int64) error

	ListRoster(ctx context.Context, physioID int64) ([]models.RosterEntry, error)
	GetPatientDetail(ctx context.Context, physioID int64, patientID int64) (models.PatientDetail, error)

	ListForPatient(ctx context.Context, patientID int64) ([]models.TreatmentWithPhysio, error)
	GetForPatient(ctx context.Context, treatmentID int64, patientID int64) (models.TreatmentWithPhysio, error)
}

type CreateExerciseParams struct {
	PhysioID    int64
	Name        string
	Description string
	Execution   string
	Advice      string
	Image       string
	Video       string
}

type UpdateExerciseParams struct {
	Name        *string
	Description *string
	Execution   *string
	Advice      *string
	Image       *string
	Video       *string
}

// ExerciseRepo manages the per physiotherapist exercise catalog.
// Every method is scoped by the owning physiotherapist id.
type ExerciseRepo interface {
	Create(ctx context.Context, arg CreateExerciseParams) (models.Exercise, error)
	List(ctx context.Context, physioID int64) ([]models.Exercise, error)
	Get(ctx context.Context, physioID int64, id int64) (models.Exercise, error)
	Update(ctx context.Context, physioID int64, id int64, arg UpdateExerciseParams) (models.Exercise, error)
	Delete(ctx context.Context, physioID int64, id int64) error
}

type AppointmentRepo interface {
	Create(ctx context.Context, treatmentID int64, scheduledOn time.Time, scheduledAt string, status string) (models.Appointment, error)
	Get(ctx context.Context, id int64) (models.Appointment, error)
	Reschedule(ctx context.Context, id int64, scheduledOn time.Time, scheduledAt string) (models.Appointment, error)
	SetStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error

	ListForPhysio(ctx context.Context, physioID int64) ([]models.AppointmentWithPatient, error)
	ListForTreatment(ctx context.Context, treatmentID int64) ([]models.AppointmentWithPatient, error)
	ListForPatient(ctx context.Context, patientID int64) ([]models.Appointment, error)
}

type MessageRepo interface {
	Create(ctx context.Context, treatmentID int64, sender models.PrincipalKind, body string) (models.Message, error)

	// Chat history of one treatment, oldest first
	ListForTreatment(ctx context.Context, treatmentID int64) ([]models.Message, error)
	// Every message across the patient's treatments, newest first
	ListForPatient(ctx context.Context, patientID int64) ([]models.Message, error)

	ListConversations(ctx context.Context, physioID int64) ([]models.Conversation, error)
}

type CreateCardParams struct {
	TreatmentID int64
	Name        string
	Kind        string
	Notes       string
}

type UpdateCardParams struct {
	Name  *string
	Kind  *string
	Notes *string
}

type UpdateCardExerciseParams struct {
	Sets *int
	Reps *int
}

type TrainingCardRepo interface {
	Create(ctx context.Context, arg CreateCardParams) (models.TrainingCard, error)
	Get(ctx context.Context, id int64) (models.TrainingCard, error)
	Update(ctx context.Context, id int64, arg UpdateCardParams) (models.TrainingCard, error)
	Delete(ctx context.Context, id int64) error

	ListForTreatment(ctx context.Context, treatmentID int64) ([]models.TrainingCard, error)
	ListForPatient(ctx context.Context, patientID int64) ([]models.TrainingCard, error)

	// Must return apperrors.ErrCardExerciseExists if the exercise is already assigned
	AddExercise(ctx context.Context, arg models.CardExercise) error
	ListExercises(ctx context.Context, cardID int64) ([]models.CardExerciseDetail, error)
	ListAssignments(ctx context.Context, cardID int64) ([]models.CardExercise, error)
	UpdateExercise(ctx context.Context, cardID int64, exerciseID int64, arg UpdateCardExerciseParams) error
	RemoveExercise(ctx context.Context, cardID int64, exerciseID int64) error
}

type UpdateSessionExerciseParams struct {
	ActualSets *int
	ActualReps *int
	Notes      *string
}

type SessionRepo interface {
	Create(ctx context.Context, cardID int64) (models.TrainingSession, error)
	Get(ctx context.Context, id int64) (models.TrainingSession, error)

	AddExercise(ctx context.Context, arg models.SessionExercise) error
	ListExercises(ctx context.Context, sessionID int64) ([]models.SessionExerciseDetail, error)
	UpdateExercise(ctx context.Context, sessionID int64, exerciseID int64, arg UpdateSessionExerciseParams) error

	SaveSurvey(ctx context.Context, sessionID int64, survey json.RawMessage) error

	ListForCard(ctx context.Context, cardID int64) ([]models.TrainingSession, error)
	ListForPatient(ctx context.Context, patientID int64) ([]models.SessionSummary, error)
	ListProgressForTreatment(ctx context.Context, treatmentID int64) ([]models.CardProgress, error)
}
