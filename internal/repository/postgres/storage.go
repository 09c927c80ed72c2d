package postgres

import (
	"context"
	"fmt"

	"github.com/fisiocare/backend/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) Physio() repository.PhysioRepo {
	return &PhysioRepo{DB: s.db}
}

func (s *Storage) Patient() repository.PatientRepo {
	return &PatientRepo{DB: s.db}
}

func (s *Storage) Refresh() repository.RefreshTokenRepo {
	return &RefreshTokenRepo{DB: s.db}
}

func (s *Storage) Treatment() repository.TreatmentRepo {
	return &TreatmentRepo{DB: s.db}
}

func (s *Storage) Exercise() repository.ExerciseRepo {
	return &ExerciseRepo{DB: s.db}
}

func (s *Storage) Appointment() repository.AppointmentRepo {
	return &AppointmentRepo{DB: s.db}
}

func (s *Storage) Message() repository.MessageRepo {
	return &MessageRepo{DB: s.db}
}

func (s *Storage) Card() repository.TrainingCardRepo {
	return &TrainingCardRepo{DB: s.db}
}

func (s *Storage) Session() repository.SessionRepo {
	return &SessionRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
