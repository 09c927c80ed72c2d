package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/testutil"
)

func Test_TreatmentRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create treatment ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			patient := createTestPatient(t, tx, "marco@mail.example")

			treatment, err := repo.Create(t.Context(), physio.ID, patient.ID)

			require.NoError(t, err)
			assert.NotZero(t, treatment.ID)
			assert.Equal(t, physio.ID, treatment.PhysioID)
			assert.Equal(t, patient.ID, treatment.PatientID)
			assert.True(t, treatment.Active)
			assert.Nil(t, treatment.EndedOn)
			assert.WithinDuration(t, time.Now(), treatment.StartedOn, 24*time.Hour)
		})
	})

	t.Run("second active treatment for the pair", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			patient := createTestPatient(t, tx, "marco@mail.example")
			createTestTreatment(t, tx, physio.ID, patient.ID)

			_, err := repo.Create(t.Context(), physio.ID, patient.ID)

			require.ErrorIs(t, err, apperrors.ErrTreatmentExists)
		})
	})

	t.Run("new treatment allowed after the old one ended", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			patient := createTestPatient(t, tx, "marco@mail.example")
			createTestTreatment(t, tx, physio.ID, patient.ID)
			require.NoError(t, repo.End(t.Context(), physio.ID, patient.ID))

			_, err := repo.Create(t.Context(), physio.ID, patient.ID)

			require.NoError(t, err)
		})
	})

	t.Run("end treatment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			patient := createTestPatient(t, tx, "marco@mail.example")
			treatment := createTestTreatment(t, tx, physio.ID, patient.ID)

			err := repo.End(t.Context(), physio.ID, patient.ID)
			require.NoError(t, err)

			got, err := repo.GetByID(t.Context(), treatment.ID)
			require.NoError(t, err)
			assert.False(t, got.Active)
			require.NotNil(t, got.EndedOn)

			// After the close the pair has no active link anymore
			_, err = repo.GetActiveByPair(t.Context(), physio.ID, patient.ID)
			assert.ErrorIs(t, err, apperrors.ErrTreatmentNotFound)

			// But the latest treatment is still reachable for ended vs missing checks
			latest, err := repo.GetByPair(t.Context(), physio.ID, patient.ID)
			require.NoError(t, err)
			assert.Equal(t, treatment.ID, latest.ID)
		})
	})

	t.Run("end without active treatment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			patient := createTestPatient(t, tx, "marco@mail.example")
			createTestTreatment(t, tx, physio.ID, patient.ID)
			require.NoError(t, repo.End(t.Context(), physio.ID, patient.ID))

			err := repo.End(t.Context(), physio.ID, patient.ID)

			require.ErrorIs(t, err, apperrors.ErrTreatmentNotFound)
		})
	})

	t.Run("roster lists active patients only", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			inCare := createTestPatient(t, tx, "marco@mail.example")
			discharged := createTestPatient(t, tx, "luca@mail.example")
			createTestTreatment(t, tx, physio.ID, inCare.ID)
			createTestTreatment(t, tx, physio.ID, discharged.ID)
			require.NoError(t, repo.End(t.Context(), physio.ID, discharged.ID))

			roster, err := repo.ListRoster(t.Context(), physio.ID)

			require.NoError(t, err)
			require.Len(t, roster, 1)
			assert.Equal(t, inCare.ID, roster[0].PatientID)
			assert.Equal(t, inCare.FirstName, roster[0].FirstName)
			assert.Equal(t, inCare.LastName, roster[0].LastName)
		})
	})

	t.Run("patient detail counts past appointments", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			treatments := TreatmentRepo{DB: tx}
			appointments := AppointmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			patient := createTestPatient(t, tx, "marco@mail.example")
			treatment := createTestTreatment(t, tx, physio.ID, patient.ID)

			yesterday := time.Now().AddDate(0, 0, -1)
			tomorrow := time.Now().AddDate(0, 0, 1)
			_, err := appointments.Create(t.Context(), treatment.ID, yesterday, "10:00:00", models.AppointmentConfirmed)
			require.NoError(t, err)
			_, err = appointments.Create(t.Context(), treatment.ID, tomorrow, "10:00:00", models.AppointmentConfirmed)
			require.NoError(t, err)

			detail, err := treatments.GetPatientDetail(t.Context(), physio.ID, patient.ID)

			require.NoError(t, err)
			assert.Equal(t, patient.ID, detail.Patient.ID)
			assert.Equal(t, treatment.ID, detail.TreatmentID)
			assert.Equal(t, int64(1), detail.PastAppointments, "only appointments before today count")
		})
	})

	t.Run("patient detail for unknown pair", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")

			_, err := repo.GetPatientDetail(t.Context(), physio.ID, 424242)

			require.ErrorIs(t, err, apperrors.ErrTreatmentNotFound)
		})
	})

	t.Run("patient side list carries the physiotherapist name", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TreatmentRepo{DB: tx}
			physio := createTestPhysio(t, tx, "anna@clinic.example")
			patient := createTestPatient(t, tx, "marco@mail.example")
			treatment := createTestTreatment(t, tx, physio.ID, patient.ID)

			list, err := repo.ListForPatient(t.Context(), patient.ID)

			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, treatment.ID, list[0].ID)
			assert.Equal(t, physio.FirstName, list[0].PhysioFirstName)
			assert.Equal(t, physio.LastName, list[0].PhysioLastName)
		})
	})
}
