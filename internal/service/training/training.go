package training

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/treatment"
)

// TrainingService manages training cards and the sessions patients
// record against them. Cards belong to a treatment; the physiotherapist
// composes them from the exercise catalog, the patient executes them.
type TrainingService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *TrainingService {
	return &TrainingService{
		storage: storage,
	}
}

// SessionDetail pairs a session with what was performed in it
type SessionDetail struct {
	Session   models.TrainingSession
	Exercises []models.SessionExerciseDetail
}

// Physiotherapist side

func (s *TrainingService) CreateCard(ctx context.Context, physioID int64, patientID int64, name string, kind string, notes string) (models.TrainingCard, error) {
	active, err := treatment.ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID)
	if err != nil {
		return models.TrainingCard{}, err
	}

	return s.storage.Card().Create(ctx, repository.CreateCardParams{
		TreatmentID: active.ID,
		Name:        name,
		Kind:        kind,
		Notes:       notes,
	})
}

func (s *TrainingService) ListCards(ctx context.Context, physioID int64, patientID int64) ([]models.TrainingCard, error) {
	active, err := treatment.ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID)
	if err != nil {
		return nil, err
	}

	return s.storage.Card().ListForTreatment(ctx, active.ID)
}

func (s *TrainingService) UpdateCard(ctx context.Context, physioID int64, cardID int64, arg repository.UpdateCardParams) (models.TrainingCard, error) {
	if _, err := s.cardOfPhysio(ctx, physioID, cardID); err != nil {
		return models.TrainingCard{}, err
	}

	return s.storage.Card().Update(ctx, cardID, arg)
}

func (s *TrainingService) DeleteCard(ctx context.Context, physioID int64, cardID int64) error {
	if _, err := s.cardOfPhysio(ctx, physioID, cardID); err != nil {
		return err
	}

	return s.storage.Card().Delete(ctx, cardID)
}

// AddExercise assigns a catalog exercise to a card with its dosage.
// The exercise must come from the acting physiotherapist's own catalog.
func (s *TrainingService) AddExercise(ctx context.Context, physioID int64, cardID int64, exerciseID int64, sets int, reps int) error {
	if _, err := s.cardOfPhysio(ctx, physioID, cardID); err != nil {
		return err
	}
	if _, err := s.storage.Exercise().Get(ctx, physioID, exerciseID); err != nil {
		return err
	}

	return s.storage.Card().AddExercise(ctx, models.CardExercise{
		CardID:     cardID,
		ExerciseID: exerciseID,
		Sets:       sets,
		Reps:       reps,
	})
}

func (s *TrainingService) ListCardExercises(ctx context.Context, physioID int64, cardID int64) ([]models.CardExerciseDetail, error) {
	if _, err := s.cardOfPhysio(ctx, physioID, cardID); err != nil {
		return nil, err
	}

	return s.storage.Card().ListExercises(ctx, cardID)
}

func (s *TrainingService) UpdateCardExercise(ctx context.Context, physioID int64, cardID int64, exerciseID int64, arg repository.UpdateCardExerciseParams) error {
	if _, err := s.cardOfPhysio(ctx, physioID, cardID); err != nil {
		return err
	}

	return s.storage.Card().UpdateExercise(ctx, cardID, exerciseID, arg)
}

func (s *TrainingService) RemoveCardExercise(ctx context.Context, physioID int64, cardID int64, exerciseID int64) error {
	if _, err := s.cardOfPhysio(ctx, physioID, cardID); err != nil {
		return err
	}

	return s.storage.Card().RemoveExercise(ctx, cardID, exerciseID)
}

func (s *TrainingService) ListCardSessions(ctx context.Context, physioID int64, cardID int64) ([]models.TrainingSession, error) {
	if _, err := s.cardOfPhysio(ctx, physioID, cardID); err != nil {
		return nil, err
	}

	return s.storage.Session().ListForCard(ctx, cardID)
}

func (s *TrainingService) SessionDetailForPhysio(ctx context.Context, physioID int64, sessionID int64) (SessionDetail, error) {
	session, err := s.storage.Session().Get(ctx, sessionID)
	if err != nil {
		return SessionDetail{}, err
	}

	if _, err := s.cardOfPhysio(ctx, physioID, session.CardID); err != nil {
		return SessionDetail{}, apperrors.ErrSessionNotFound
	}

	return s.sessionDetail(ctx, session)
}

// Progress returns the per card session series of a patient in care,
// surveys included, for the progress charts.
func (s *TrainingService) Progress(ctx context.Context, physioID int64, patientID int64) ([]models.CardProgress, error) {
	active, err := treatment.ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID)
	if err != nil {
		return nil, err
	}

	return s.storage.Session().ListProgressForTreatment(ctx, active.ID)
}

// Patient side

func (s *TrainingService) ListCardsForPatient(ctx context.Context, patientID int64) ([]models.TrainingCard, error) {
	return s.storage.Card().ListForPatient(ctx, patientID)
}

// StartSession opens a new session on one of the patient's cards. The
// card's assignments are copied into the session in the same transaction
// with the assigned dosage as the starting point, so the patient only
// edits what went differently.
func (s *TrainingService) StartSession(ctx context.Context, patientID int64, cardID int64) (models.TrainingSession, error) {
	if _, err := s.cardOfPatient(ctx, patientID, cardID, true); err != nil {
		return models.TrainingSession{}, err
	}

	var session models.TrainingSession

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		var err error

		session, err = store.Session().Create(ctx, cardID)
		if err != nil {
			return err
		}

		assignments, err := store.Card().ListAssignments(ctx, cardID)
		if err != nil {
			return err
		}

		for _, a := range assignments {
			err = store.Session().AddExercise(ctx, models.SessionExercise{
				SessionID:  session.ID,
				ExerciseID: a.ExerciseID,
				ActualSets: a.Sets,
				ActualReps: a.Reps,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.TrainingSession{}, err
	}

	return session, nil
}

func (s *TrainingService) ListSessionsForPatient(ctx context.Context, patientID int64) ([]models.SessionSummary, error) {
	return s.storage.Session().ListForPatient(ctx, patientID)
}

func (s *TrainingService) SessionDetailForPatient(ctx context.Context, patientID int64, sessionID int64) (SessionDetail, error) {
	session, err := s.sessionOfPatient(ctx, patientID, sessionID, false)
	if err != nil {
		return SessionDetail{}, err
	}

	return s.sessionDetail(ctx, session)
}

func (s *TrainingService) UpdateSessionExercise(ctx context.Context, patientID int64, sessionID int64, exerciseID int64, arg repository.UpdateSessionExerciseParams) error {
	if _, err := s.sessionOfPatient(ctx, patientID, sessionID, true); err != nil {
		return err
	}

	return s.storage.Session().UpdateExercise(ctx, sessionID, exerciseID, arg)
}

func (s *TrainingService) SaveSurvey(ctx context.Context, patientID int64, sessionID int64, survey json.RawMessage) error {
	if _, err := s.sessionOfPatient(ctx, patientID, sessionID, true); err != nil {
		return err
	}

	return s.storage.Session().SaveSurvey(ctx, sessionID, survey)
}

// cardOfPhysio checks the card belongs to a treatment the acting
// physiotherapist runs. Foreign cards read as not found, cards of an
// ended treatment as forbidden.
func (s *TrainingService) cardOfPhysio(ctx context.Context, physioID int64, cardID int64) (models.TrainingCard, error) {
	card, err := s.storage.Card().Get(ctx, cardID)
	if err != nil {
		return card, err
	}

	owning, err := s.storage.Treatment().GetByID(ctx, card.TreatmentID)
	if err != nil {
		return card, err
	}

	switch {
	case owning.PhysioID != physioID:
		return card, apperrors.ErrCardNotFound
	case !owning.Active:
		return card, apperrors.ErrTreatmentEnded
	}

	return card, nil
}

// cardOfPatient is the mirror check on the patient surface. Reads work
// on ended treatments, writes require mustBeActive.
func (s *TrainingService) cardOfPatient(ctx context.Context, patientID int64, cardID int64, mustBeActive bool) (models.TrainingCard, error) {
	card, err := s.storage.Card().Get(ctx, cardID)
	if err != nil {
		return card, err
	}

	owning, err := s.storage.Treatment().GetByID(ctx, card.TreatmentID)
	if err != nil {
		return card, err
	}

	switch {
	case owning.PatientID != patientID:
		return card, apperrors.ErrCardNotFound
	case mustBeActive && !owning.Active:
		return card, apperrors.ErrTreatmentEnded
	}

	return card, nil
}

func (s *TrainingService) sessionOfPatient(ctx context.Context, patientID int64, sessionID int64, mustBeActive bool) (models.TrainingSession, error) {
	session, err := s.storage.Session().Get(ctx, sessionID)
	if err != nil {
		return session, err
	}

	if _, err := s.cardOfPatient(ctx, patientID, session.CardID, mustBeActive); err != nil {
		if errors.Is(err, apperrors.ErrCardNotFound) {
			return session, apperrors.ErrSessionNotFound
		}
		return session, err
	}

	return session, nil
}

func (s *TrainingService) sessionDetail(ctx context.Context, session models.TrainingSession) (SessionDetail, error) {
	exercises, err := s.storage.Session().ListExercises(ctx, session.ID)
	if err != nil {
		return SessionDetail{}, err
	}

	return SessionDetail{Session: session, Exercises: exercises}, nil
}
