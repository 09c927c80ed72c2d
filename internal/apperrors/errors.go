package apperrors

import (
	"errors"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrPhysioNotFound    = errors.New("physiotherapist not found")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrPatientRegistered = errors.New("patient already completed registration")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token is revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")
	ErrRefreshTokenInvalid  = errors.New("refresh token is invalid")

	ErrTreatmentNotFound = errors.New("treatment not found")
	ErrTreatmentEnded    = errors.New("treatment is ended")
	ErrTreatmentExists   = errors.New("active treatment already exists")

	ErrExerciseNotFound        = errors.New("exercise not found")
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrCardNotFound            = errors.New("training card not found")
	ErrCardExerciseNotFound    = errors.New("exercise not present on training card")
	ErrCardExerciseExists      = errors.New("exercise already present on training card")
	ErrSessionNotFound         = errors.New("training session not found")
	ErrSessionExerciseNotFound = errors.New("exercise not present in training session")
	ErrSessionExerciseExists   = errors.New("exercise already recorded in training session")

	ErrForbidden = errors.New("operation not permitted")
)
