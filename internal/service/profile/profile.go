package profile

import (
	"context"

	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
)

// ProfileService serves both account kinds their own record
type ProfileService struct {
	physioRepo  repository.PhysioRepo
	patientRepo repository.PatientRepo
}

func NewService(physioRepo repository.PhysioRepo, patientRepo repository.PatientRepo) *ProfileService {
	return &ProfileService{
		physioRepo:  physioRepo,
		patientRepo: patientRepo,
	}
}

func (s *ProfileService) Physio(ctx context.Context, id int64) (models.Physio, error) {
	return s.physioRepo.GetByID(ctx, id)
}

func (s *ProfileService) UpdatePhysio(ctx context.Context, id int64, arg repository.UpdatePhysioParams) (models.Physio, error) {
	return s.physioRepo.Update(ctx, id, arg)
}

func (s *ProfileService) Patient(ctx context.Context, id int64) (models.Patient, error) {
	return s.patientRepo.GetByID(ctx, id)
}

func (s *ProfileService) UpdatePatient(ctx context.Context, id int64, arg repository.UpdatePatientParams) (models.Patient, error) {
	return s.patientRepo.Update(ctx, id, arg)
}

// DeletePatient removes the account entirely. Treatments and everything
// hanging off them go with it through the cascades.
func (s *ProfileService) DeletePatient(ctx context.Context, id int64) error {
	return s.patientRepo.Delete(ctx, id)
}
