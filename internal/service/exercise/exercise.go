package exercise

import (
	"context"

	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
)

// ExerciseService manages the physiotherapist's private exercise catalog.
// Scoping by owner happens in the repository, a physiotherapist can not
// see or touch another one's exercises.
type ExerciseService struct {
	exerciseRepo repository.ExerciseRepo
}

func NewService(exerciseRepo repository.ExerciseRepo) *ExerciseService {
	return &ExerciseService{
		exerciseRepo: exerciseRepo,
	}
}

func (s *ExerciseService) Create(ctx context.Context, arg repository.CreateExerciseParams) (models.Exercise, error) {
	return s.exerciseRepo.Create(ctx, arg)
}

func (s *ExerciseService) List(ctx context.Context, physioID int64) ([]models.Exercise, error) {
	return s.exerciseRepo.List(ctx, physioID)
}

func (s *ExerciseService) Get(ctx context.Context, physioID int64, id int64) (models.Exercise, error) {
	return s.exerciseRepo.Get(ctx, physioID, id)
}

func (s *ExerciseService) Update(ctx context.Context, physioID int64, id int64, arg repository.UpdateExerciseParams) (models.Exercise, error) {
	return s.exerciseRepo.Update(ctx, physioID, id, arg)
}

func (s *ExerciseService) Delete(ctx context.Context, physioID int64, id int64) error {
	return s.exerciseRepo.Delete(ctx, physioID, id)
}
