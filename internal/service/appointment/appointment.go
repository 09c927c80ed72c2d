package appointment

import (
	"context"
	"time"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/treatment"
)

// AppointmentService schedules visits. A visit always belongs to a
// treatment: physiotherapists book confirmed slots, patients request
// pending ones which the physiotherapist then confirms.
type AppointmentService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *AppointmentService {
	return &AppointmentService{
		storage: storage,
	}
}

// Schedule books a visit with a patient in active care
func (s *AppointmentService) Schedule(ctx context.Context, physioID int64, patientID int64, scheduledOn time.Time, scheduledAt string) (models.Appointment, error) {
	active, err := treatment.ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID)
	if err != nil {
		return models.Appointment{}, err
	}

	return s.storage.Appointment().Create(ctx, active.ID, scheduledOn, scheduledAt, models.AppointmentConfirmed)
}

func (s *AppointmentService) Agenda(ctx context.Context, physioID int64) ([]models.AppointmentWithPatient, error) {
	return s.storage.Appointment().ListForPhysio(ctx, physioID)
}

func (s *AppointmentService) ListForPair(ctx context.Context, physioID int64, patientID int64) ([]models.AppointmentWithPatient, error) {
	active, err := treatment.ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID)
	if err != nil {
		return nil, err
	}

	return s.storage.Appointment().ListForTreatment(ctx, active.ID)
}

func (s *AppointmentService) Reschedule(ctx context.Context, physioID int64, appointmentID int64, scheduledOn time.Time, scheduledAt string) (models.Appointment, error) {
	if _, err := s.owned(ctx, physioID, appointmentID); err != nil {
		return models.Appointment{}, err
	}

	return s.storage.Appointment().Reschedule(ctx, appointmentID, scheduledOn, scheduledAt)
}

func (s *AppointmentService) Confirm(ctx context.Context, physioID int64, appointmentID int64) error {
	if _, err := s.owned(ctx, physioID, appointmentID); err != nil {
		return err
	}

	return s.storage.Appointment().SetStatus(ctx, appointmentID, models.AppointmentConfirmed)
}

func (s *AppointmentService) Cancel(ctx context.Context, physioID int64, appointmentID int64) error {
	if _, err := s.owned(ctx, physioID, appointmentID); err != nil {
		return err
	}

	return s.storage.Appointment().Delete(ctx, appointmentID)
}

// Patient side

func (s *AppointmentService) ListForPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	return s.storage.Appointment().ListForPatient(ctx, patientID)
}

// Request lets the patient ask for a visit on their active treatment.
// The appointment starts pending until the physiotherapist confirms it.
func (s *AppointmentService) Request(ctx context.Context, patientID int64, scheduledOn time.Time, scheduledAt string) (models.Appointment, error) {
	active, err := s.activeTreatmentOfPatient(ctx, patientID)
	if err != nil {
		return models.Appointment{}, err
	}

	return s.storage.Appointment().Create(ctx, active.ID, scheduledOn, scheduledAt, models.AppointmentPending)
}

// owned loads the appointment and checks the physiotherapist runs the
// treatment it belongs to. Foreign appointments read as not found, an
// ended treatment reads as forbidden.
func (s *AppointmentService) owned(ctx context.Context, physioID int64, appointmentID int64) (models.Appointment, error) {
	appointment, err := s.storage.Appointment().Get(ctx, appointmentID)
	if err != nil {
		return appointment, err
	}

	owning, err := s.storage.Treatment().GetByID(ctx, appointment.TreatmentID)
	if err != nil {
		return appointment, err
	}

	switch {
	case owning.PhysioID != physioID:
		return appointment, apperrors.ErrAppointmentNotFound
	case !owning.Active:
		return appointment, apperrors.ErrTreatmentEnded
	}

	return appointment, nil
}

func (s *AppointmentService) activeTreatmentOfPatient(ctx context.Context, patientID int64) (models.Treatment, error) {
	treatments, err := s.storage.Treatment().ListForPatient(ctx, patientID)
	if err != nil {
		return models.Treatment{}, err
	}

	for _, t := range treatments {
		if t.Active {
			return t.Treatment, nil
		}
	}

	return models.Treatment{}, apperrors.ErrTreatmentNotFound
}
