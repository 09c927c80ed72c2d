package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fisiocare/backend/internal/models"
)

// RefreshCookieName is where the refresh token travels. The cookie is
// scoped to the auth prefix of one role so the two surfaces never leak
// tokens into each other.
const RefreshCookieName = "refreshToken"

var errNoRefreshCookie = errors.New("refresh token cookie not found")

func setRefreshCookie(w http.ResponseWriter, path string, refresh models.IssuedToken, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refresh.Value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func refreshFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", errNoRefreshCookie
	}
	return cookie.Value, nil
}
