package render

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fisiocare/backend/internal/apperrors"
)

// ServiceError translates a service error into the envelope. Sentinel
// errors carry their own message, anything unknown becomes a plain 500.
func ServiceError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrRefreshTokenNotFound),
		errors.Is(err, apperrors.ErrRefreshTokenRevoked),
		errors.Is(err, apperrors.ErrRefreshTokenExpired),
		errors.Is(err, apperrors.ErrRefreshTokenInvalid):
		code = http.StatusUnauthorized

	case errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrTreatmentEnded):
		code = http.StatusForbidden

	case errors.Is(err, apperrors.ErrPhysioNotFound),
		errors.Is(err, apperrors.ErrPatientNotFound),
		errors.Is(err, apperrors.ErrTreatmentNotFound),
		errors.Is(err, apperrors.ErrExerciseNotFound),
		errors.Is(err, apperrors.ErrAppointmentNotFound),
		errors.Is(err, apperrors.ErrCardNotFound),
		errors.Is(err, apperrors.ErrCardExerciseNotFound),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrSessionExerciseNotFound):
		code = http.StatusNotFound

	case errors.Is(err, apperrors.ErrEmailTaken),
		errors.Is(err, apperrors.ErrPatientRegistered),
		errors.Is(err, apperrors.ErrTreatmentExists),
		errors.Is(err, apperrors.ErrCardExerciseExists),
		errors.Is(err, apperrors.ErrSessionExerciseExists):
		code = http.StatusConflict
	}

	if code != http.StatusInternalServerError {
		message = capitalize(sentinelMessage(err))
	}

	Error(w, code, message)
}

// sentinelMessage digs the sentinel out of a wrapped error so the client
// never sees internal wrapping context
func sentinelMessage(err error) string {
	for _, sentinel := range []error{
		apperrors.ErrInvalidCredentials,
		apperrors.ErrRefreshTokenNotFound,
		apperrors.ErrRefreshTokenRevoked,
		apperrors.ErrRefreshTokenExpired,
		apperrors.ErrRefreshTokenInvalid,
		apperrors.ErrForbidden,
		apperrors.ErrTreatmentEnded,
		apperrors.ErrPhysioNotFound,
		apperrors.ErrPatientNotFound,
		apperrors.ErrTreatmentNotFound,
		apperrors.ErrExerciseNotFound,
		apperrors.ErrAppointmentNotFound,
		apperrors.ErrCardNotFound,
		apperrors.ErrCardExerciseNotFound,
		apperrors.ErrSessionNotFound,
		apperrors.ErrSessionExerciseNotFound,
		apperrors.ErrEmailTaken,
		apperrors.ErrPatientRegistered,
		apperrors.ErrTreatmentExists,
		apperrors.ErrCardExerciseExists,
		apperrors.ErrSessionExerciseExists,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
