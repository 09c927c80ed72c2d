package training

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/repository/postgres"
	"github.com/fisiocare/backend/internal/testutil"
)

// fixture seeds a physiotherapist treating a patient with one training
// card holding two assigned exercises
type fixture struct {
	storage   repository.Storage
	service   *TrainingService
	physio    models.Physio
	patient   models.Patient
	treatment models.Treatment
	card      models.TrainingCard
	squat     models.Exercise
	plank     models.Exercise
}

func newFixture(t *testing.T, tx pgx.Tx) fixture {
	t.Helper()

	ctx := t.Context()
	storage := postgres.NewStorage(tx)

	physio, err := storage.Physio().Create(ctx, repository.CreatePhysioParams{
		FirstName:    "Anna",
		LastName:     "Rossi",
		Email:        "anna@clinic.example",
		PasswordHash: "irrelevant-hash",
	})
	require.NoError(t, err)

	patient, err := storage.Patient().Create(ctx, repository.CreatePatientParams{
		FirstName: "Mario",
		LastName:  "Bianchi",
		Email:     "marco@mail.example",
		BirthDate: time.Date(1980, 5, 20, 0, 0, 0, 0, time.UTC),
		Gender:    "M",
		HeightCm:  decimal.NewFromFloat(178.5),
		WeightKg:  decimal.NewFromFloat(82.0),
	})
	require.NoError(t, err)

	treatment, err := storage.Treatment().Create(ctx, physio.ID, patient.ID)
	require.NoError(t, err)

	squat, err := storage.Exercise().Create(ctx, repository.CreateExerciseParams{
		PhysioID: physio.ID,
		Name:     "Squat",
	})
	require.NoError(t, err)
	plank, err := storage.Exercise().Create(ctx, repository.CreateExerciseParams{
		PhysioID: physio.ID,
		Name:     "Plank",
	})
	require.NoError(t, err)

	card, err := storage.Card().Create(ctx, repository.CreateCardParams{
		TreatmentID: treatment.ID,
		Name:        "Week one",
		Kind:        "home",
	})
	require.NoError(t, err)

	require.NoError(t, storage.Card().AddExercise(ctx, models.CardExercise{
		CardID: card.ID, ExerciseID: squat.ID, Sets: 3, Reps: 12,
	}))
	require.NoError(t, storage.Card().AddExercise(ctx, models.CardExercise{
		CardID: card.ID, ExerciseID: plank.ID, Sets: 4, Reps: 8,
	}))

	return fixture{
		storage:   storage,
		service:   NewService(storage),
		physio:    physio,
		patient:   patient,
		treatment: treatment,
		card:      card,
		squat:     squat,
		plank:     plank,
	}
}

func Test_TrainingService(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("start session copies the card assignments", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)

			session, err := f.service.StartSession(t.Context(), f.patient.ID, f.card.ID)
			require.NoError(t, err)
			assert.Equal(t, f.card.ID, session.CardID)
			assert.Nil(t, session.Survey, "the questionnaire comes later")

			detail, err := f.service.SessionDetailForPatient(t.Context(), f.patient.ID, session.ID)
			require.NoError(t, err)
			require.Len(t, detail.Exercises, 2)

			byID := map[int64]models.SessionExerciseDetail{}
			for _, e := range detail.Exercises {
				byID[e.ExerciseID] = e
			}

			squat := byID[f.squat.ID]
			assert.Equal(t, 3, squat.AssignedSets)
			assert.Equal(t, 12, squat.AssignedReps)
			assert.Equal(t, 3, squat.ActualSets, "actuals start from the assigned dosage")
			assert.Equal(t, 12, squat.ActualReps)

			plank := byID[f.plank.ID]
			assert.Equal(t, 4, plank.ActualSets)
			assert.Equal(t, 8, plank.ActualReps)
		})
	})

	t.Run("start session on a foreign card", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)
			stranger, err := f.storage.Patient().Create(t.Context(), repository.CreatePatientParams{
				FirstName: "Luca",
				LastName:  "Verdi",
				Email:     "luca@mail.example",
				BirthDate: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
				Gender:    "M",
			})
			require.NoError(t, err)

			_, err = f.service.StartSession(t.Context(), stranger.ID, f.card.ID)

			require.ErrorIs(t, err, apperrors.ErrCardNotFound, "foreign cards must read as missing")
		})
	})

	t.Run("start session after the treatment ended", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)
			require.NoError(t, f.storage.Treatment().End(t.Context(), f.physio.ID, f.patient.ID))

			_, err := f.service.StartSession(t.Context(), f.patient.ID, f.card.ID)

			require.ErrorIs(t, err, apperrors.ErrTreatmentEnded)
		})
	})

	t.Run("session reads survive the treatment end", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)
			session, err := f.service.StartSession(t.Context(), f.patient.ID, f.card.ID)
			require.NoError(t, err)

			require.NoError(t, f.storage.Treatment().End(t.Context(), f.physio.ID, f.patient.ID))

			_, err = f.service.SessionDetailForPatient(t.Context(), f.patient.ID, session.ID)
			assert.NoError(t, err, "history stays readable after discharge")

			err = f.service.SaveSurvey(t.Context(), f.patient.ID, session.ID, []byte(`{"pain":2}`))
			assert.ErrorIs(t, err, apperrors.ErrTreatmentEnded, "but writes do not")
		})
	})

	t.Run("update session exercise and survey", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)
			session, err := f.service.StartSession(t.Context(), f.patient.ID, f.card.ID)
			require.NoError(t, err)

			sets, notes := 2, "stopped early, knee pain"
			err = f.service.UpdateSessionExercise(t.Context(), f.patient.ID, session.ID, f.squat.ID,
				repository.UpdateSessionExerciseParams{ActualSets: &sets, Notes: &notes})
			require.NoError(t, err)

			require.NoError(t, f.service.SaveSurvey(t.Context(), f.patient.ID, session.ID, []byte(`{"pain":3,"fatigue":4}`)))

			detail, err := f.service.SessionDetailForPatient(t.Context(), f.patient.ID, session.ID)
			require.NoError(t, err)
			assert.JSONEq(t, `{"pain":3,"fatigue":4}`, string(detail.Session.Survey))

			for _, e := range detail.Exercises {
				if e.ExerciseID != f.squat.ID {
					continue
				}
				assert.Equal(t, 2, e.ActualSets)
				assert.Equal(t, 12, e.ActualReps, "untouched fields keep their value")
				assert.Equal(t, notes, e.Notes)
			}
		})
	})

	t.Run("physio sees the session through the card", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)
			session, err := f.service.StartSession(t.Context(), f.patient.ID, f.card.ID)
			require.NoError(t, err)

			detail, err := f.service.SessionDetailForPhysio(t.Context(), f.physio.ID, session.ID)
			require.NoError(t, err)
			assert.Len(t, detail.Exercises, 2)

			other, err := f.storage.Physio().Create(t.Context(), repository.CreatePhysioParams{
				FirstName:    "Paolo",
				LastName:     "Neri",
				Email:        "paolo@clinic.example",
				PasswordHash: "irrelevant-hash",
			})
			require.NoError(t, err)

			_, err = f.service.SessionDetailForPhysio(t.Context(), other.ID, session.ID)
			assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		})
	})

	t.Run("progress groups sessions by card", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)
			_, err := f.service.StartSession(t.Context(), f.patient.ID, f.card.ID)
			require.NoError(t, err)
			_, err = f.service.StartSession(t.Context(), f.patient.ID, f.card.ID)
			require.NoError(t, err)

			progress, err := f.service.Progress(t.Context(), f.physio.ID, f.patient.ID)

			require.NoError(t, err)
			require.Len(t, progress, 1)
			assert.Equal(t, f.card.ID, progress[0].CardID)
			assert.Equal(t, f.card.Name, progress[0].CardName)
			assert.Len(t, progress[0].Sessions, 2)
		})
	})

	t.Run("assigning an exercise of another physio", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(t, tx)
			other, err := f.storage.Physio().Create(t.Context(), repository.CreatePhysioParams{
				FirstName:    "Paolo",
				LastName:     "Neri",
				Email:        "paolo@clinic.example",
				PasswordHash: "irrelevant-hash",
			})
			require.NoError(t, err)
			foreign, err := f.storage.Exercise().Create(t.Context(), repository.CreateExerciseParams{
				PhysioID: other.ID,
				Name:     "Lunges",
			})
			require.NoError(t, err)

			err = f.service.AddExercise(t.Context(), f.physio.ID, f.card.ID, foreign.ID, 3, 10)

			require.ErrorIs(t, err, apperrors.ErrExerciseNotFound, "the catalog is per physiotherapist")
		})
	})
}
