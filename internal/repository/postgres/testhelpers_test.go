package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
)

func createTestPhysio(t *testing.T, db DBTX, email string) models.Physio {
	t.Helper()

	repo := PhysioRepo{DB: db}
	physio, err := repo.Create(t.Context(), repository.CreatePhysioParams{
		FirstName:    "Anna",
		LastName:     "Rossi",
		Email:        email,
		PasswordHash: "irrelevant-hash",
	})
	require.NoError(t, err, "seeding physiotherapist must not fail")

	return physio
}

func createTestPatient(t *testing.T, db DBTX, email string) models.Patient {
	t.Helper()

	repo := PatientRepo{DB: db}
	patient, err := repo.Create(t.Context(), repository.CreatePatientParams{
		FirstName: "Mario",
		LastName:  "Bianchi",
		Email:     email,
		BirthDate: time.Date(1980, 5, 20, 0, 0, 0, 0, time.UTC),
		Gender:    "M",
		HeightCm:  decimal.NewFromFloat(178.5),
		WeightKg:  decimal.NewFromFloat(82.0),
		Diagnosis: "lower back pain",
	})
	require.NoError(t, err, "seeding patient must not fail")

	return patient
}

func createTestTreatment(t *testing.T, db DBTX, physioID int64, patientID int64) models.Treatment {
	t.Helper()

	repo := TreatmentRepo{DB: db}
	treatment, err := repo.Create(t.Context(), physioID, patientID)
	require.NoError(t, err, "seeding treatment must not fail")

	return treatment
}
