package treatment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
)

// TreatmentService manages the physiotherapist's patient roster: each
// roster entry is a patient linked by an active treatment.
type TreatmentService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *TreatmentService {
	return &TreatmentService{
		storage: storage,
	}
}

type AddPatientParams struct {
	FirstName string
	LastName  string
	Email     string
	BirthDate time.Time
	Gender    string
	HeightCm  decimal.Decimal
	WeightKg  decimal.Decimal
	Diagnosis string
}

// AddPatient takes a patient into care. The patient record is created
// without credentials if the email is unknown, reused otherwise, and an
// active treatment is opened. Record and treatment land in one transaction.
func (s *TreatmentService) AddPatient(ctx context.Context, physioID int64, arg AddPatientParams) (models.Patient, models.Treatment, error) {
	var patient models.Patient
	var treatment models.Treatment

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		var err error

		patient, err = store.Patient().GetByEmail(ctx, arg.Email)
		if errors.Is(err, apperrors.ErrPatientNotFound) {
			patient, err = store.Patient().Create(ctx, repository.CreatePatientParams{
				FirstName: arg.FirstName,
				LastName:  arg.LastName,
				Email:     arg.Email,
				BirthDate: arg.BirthDate,
				Gender:    arg.Gender,
				HeightCm:  arg.HeightCm,
				WeightKg:  arg.WeightKg,
				Diagnosis: arg.Diagnosis,
			})
		}
		if err != nil {
			return err
		}

		treatment, err = store.Treatment().Create(ctx, physioID, patient.ID)
		return err
	})
	if err != nil {
		return models.Patient{}, models.Treatment{}, err
	}

	return patient, treatment, nil
}

func (s *TreatmentService) Roster(ctx context.Context, physioID int64) ([]models.RosterEntry, error) {
	return s.storage.Treatment().ListRoster(ctx, physioID)
}

func (s *TreatmentService) PatientDetail(ctx context.Context, physioID int64, patientID int64) (models.PatientDetail, error) {
	detail, err := s.storage.Treatment().GetPatientDetail(ctx, physioID, patientID)
	if errors.Is(err, apperrors.ErrTreatmentNotFound) {
		return detail, apperrors.ErrPatientNotFound
	}
	return detail, err
}

// UpdatePatient edits the record of a patient currently in the
// physiotherapist's care
func (s *TreatmentService) UpdatePatient(ctx context.Context, physioID int64, patientID int64, arg repository.UpdatePatientParams) (models.Patient, error) {
	if _, err := ActiveForPair(ctx, s.storage.Treatment(), physioID, patientID); err != nil {
		return models.Patient{}, err
	}

	return s.storage.Patient().Update(ctx, patientID, arg)
}

// EndTreatment discharges the patient: the treatment gets its end date
// and stops being active. The patient record stays.
func (s *TreatmentService) EndTreatment(ctx context.Context, physioID int64, patientID int64) error {
	return s.storage.Treatment().End(ctx, physioID, patientID)
}

// Patient side views

func (s *TreatmentService) ListForPatient(ctx context.Context, patientID int64) ([]models.TreatmentWithPhysio, error) {
	return s.storage.Treatment().ListForPatient(ctx, patientID)
}

func (s *TreatmentService) GetForPatient(ctx context.Context, treatmentID int64, patientID int64) (models.TreatmentWithPhysio, error) {
	return s.storage.Treatment().GetForPatient(ctx, treatmentID, patientID)
}

// ActiveForPair resolves the active treatment linking a physiotherapist
// and a patient. A pair that was linked before but is not anymore yields
// ErrTreatmentEnded so callers can answer forbidden instead of not found.
func ActiveForPair(ctx context.Context, repo repository.TreatmentRepo, physioID int64, patientID int64) (models.Treatment, error) {
	treatment, err := repo.GetActiveByPair(ctx, physioID, patientID)
	if err == nil {
		return treatment, nil
	}
	if !errors.Is(err, apperrors.ErrTreatmentNotFound) {
		return treatment, err
	}

	if _, pastErr := repo.GetByPair(ctx, physioID, patientID); pastErr == nil {
		return treatment, apperrors.ErrTreatmentEnded
	}

	return treatment, apperrors.ErrTreatmentNotFound
}
