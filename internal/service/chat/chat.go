package chat

import (
	"context"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/treatment"
)

// ChatService carries messages between the two sides of a treatment.
// History stays readable structurally, but sending requires the
// treatment to still be active.
type ChatService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ChatService {
	return &ChatService{
		storage: storage,
	}
}

func (s *ChatService) Conversations(ctx context.Context, physioID int64) ([]models.Conversation, error) {
	return s.storage.Message().ListConversations(ctx, physioID)
}

// History returns the full exchange with one patient, oldest first
func (s *ChatService) History(ctx context.Context, physioID int64, patientID int64) ([]models.Message, error) {
	active, err := treatment.ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID)
	if err != nil {
		return nil, err
	}

	return s.storage.Message().ListForTreatment(ctx, active.ID)
}

func (s *ChatService) SendAsPhysio(ctx context.Context, physioID int64, patientID int64, body string) (models.Message, error) {
	active, err := treatment.ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID)
	if err != nil {
		return models.Message{}, err
	}

	return s.storage.Message().Create(ctx, active.ID, models.KindPhysio, body)
}

// Patient side

func (s *ChatService) ListForPatient(ctx context.Context, patientID int64) ([]models.Message, error) {
	return s.storage.Message().ListForPatient(ctx, patientID)
}

func (s *ChatService) SendAsPatient(ctx context.Context, patientID int64, body string) (models.Message, error) {
	treatments, err := s.storage.Treatment().ListForPatient(ctx, patientID)
	if err != nil {
		return models.Message{}, err
	}

	for _, t := range treatments {
		if t.Active {
			return s.storage.Message().Create(ctx, t.ID, models.KindPatient, body)
		}
	}

	return models.Message{}, apperrors.ErrTreatmentNotFound
}
