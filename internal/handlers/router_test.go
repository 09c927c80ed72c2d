package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisiocare/backend/internal/logger"
	"github.com/fisiocare/backend/internal/repository/postgres"
	"github.com/fisiocare/backend/internal/service/appointment"
	"github.com/fisiocare/backend/internal/service/auth"
	"github.com/fisiocare/backend/internal/service/chat"
	"github.com/fisiocare/backend/internal/service/exercise"
	"github.com/fisiocare/backend/internal/service/profile"
	"github.com/fisiocare/backend/internal/service/training"
	"github.com/fisiocare/backend/internal/service/treatment"
	"github.com/fisiocare/backend/internal/testutil"
)

// envelope mirrors the body every endpoint wraps its payload in
type envelope struct {
	TimeStamp  string          `json:"timeStamp"`
	StatusCode int             `json:"statusCode"`
	HTTPStatus string          `json:"httpStatus"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func readEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	require.NoErrorf(t, json.Unmarshal(body, &env), "body is not an envelope: %s", string(body))
	return env
}

func Test_Router(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run the full router over production services bound to the test tx
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(url string, authService *auth.AuthService)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			authService, err := auth.NewAuthService(auth.Config{
				AccessSecret:  "test-access-secret",
				RefreshSecret: "test-refresh-secret",
			}, storage)
			require.NoError(t, err, "auth service starting error")

			router := NewRouter(Services{
				Auth:         authService,
				Profiles:     profile.NewService(storage.Physio(), storage.Patient()),
				Treatments:   treatment.NewService(storage),
				Exercises:    exercise.NewService(storage.Exercise()),
				Appointments: appointment.NewService(storage),
				Chat:         chat.NewService(storage),
				Training:     training.NewService(storage),
			}, logger.NewNoOp())

			srv := httptest.NewServer(router)
			defer srv.Close()

			fn(srv.URL, authService)
		})
	}

	registerPhysio := func(t *testing.T, url string) (accessToken string, refreshCookie *http.Cookie) {
		t.Helper()

		data := `{"firstName": "Anna", "lastName": "Rossi", "email": "anna@clinic.example", "password": "StrongEnoughPassword"}`
		resp, err := http.Post(url+"/fisioterapista/auth/register", "application/json", strings.NewReader(data))
		require.NoError(t, err)

		env := readEnvelope(t, resp)
		require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %+v", env)

		var payload struct {
			AccessToken string `json:"accessToken"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))

		for _, c := range resp.Cookies() {
			if c.Name == RefreshCookieName {
				refreshCookie = c
			}
		}
		require.NotNil(t, refreshCookie, "register must set the refresh cookie")

		return payload.AccessToken, refreshCookie
	}

	t.Run("welcome", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, err := http.Get(url + "/")
			require.NoError(t, err)

			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, http.StatusOK, env.StatusCode)
			assert.Equal(t, "OK", env.HTTPStatus)
			assert.NotEmpty(t, env.TimeStamp)
		})
	})

	t.Run("physio login sets a scoped refresh cookie", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			registerPhysio(t, url)

			data := `{"email": "anna@clinic.example", "password": "StrongEnoughPassword"}`
			resp, err := http.Post(url+"/fisioterapista/auth/login", "application/json", strings.NewReader(data))
			require.NoError(t, err)

			env := readEnvelope(t, resp)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %+v", env)
			assert.Equal(t, "Logged in successfully", env.Message)

			require.Len(t, resp.Cookies(), 1)
			cookie := resp.Cookies()[0]
			assert.Equal(t, RefreshCookieName, cookie.Name)
			assert.NotEmpty(t, cookie.Value)
			assert.True(t, cookie.HttpOnly, "refresh cookie must be HttpOnly")
			assert.Equal(t, PhysioAuthCookiePath, cookie.Path, "cookie must be scoped to the auth prefix")
			assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
			assert.InDelta(t, authService.RefreshTokenTTL().Seconds(), cookie.MaxAge, 1)
		})
	})

	t.Run("login with wrong password", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			registerPhysio(t, url)

			data := `{"email": "anna@clinic.example", "password": "WrongPassword"}`
			resp, err := http.Post(url+"/fisioterapista/auth/login", "application/json", strings.NewReader(data))
			require.NoError(t, err)

			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Invalid credentials", env.Message)
			assert.Empty(t, resp.Cookies(), "no cookie on failed login")
		})
	})

	t.Run("refresh without cookie", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, err := http.Post(url+"/fisioterapista/auth/refresh", "application/json", nil)
			require.NoError(t, err)

			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Refresh token cookie is missing", env.Message)
		})
	})

	t.Run("refresh rotates the cookie", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			_, refreshCookie := registerPhysio(t, url)

			req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url+"/fisioterapista/auth/refresh", nil)
			require.NoError(t, err)
			req.AddCookie(refreshCookie)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)

			env := readEnvelope(t, resp)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %+v", env)

			require.Len(t, resp.Cookies(), 1)
			assert.NotEqual(t, refreshCookie.Value, resp.Cookies()[0].Value, "refresh must rotate the token")
		})
	})

	t.Run("protected route without a token", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, err := http.Get(url + "/fisioterapista/patients")
			require.NoError(t, err)

			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Invalid credentials", env.Message)
		})
	})

	t.Run("physio adds a patient and reads the roster", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			access, _ := registerPhysio(t, url)

			payload := `{
				"firstName": "Mario",
				"lastName": "Bianchi",
				"email": "marco@mail.example",
				"birthDate": "1980-05-20",
				"gender": "M",
				"heightCm": 178.5,
				"weightKg": 82.0,
				"diagnosis": "lower back pain"
			}`
			req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url+"/fisioterapista/patients", strings.NewReader(payload))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+access)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			env := readEnvelope(t, resp)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %+v", env)

			req, err = http.NewRequestWithContext(t.Context(), http.MethodGet, url+"/fisioterapista/patients", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+access)

			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			env = readEnvelope(t, resp)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var roster []struct {
				FirstName string `json:"firstName"`
				LastName  string `json:"lastName"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &roster))
			require.Len(t, roster, 1)
			assert.Equal(t, "Mario", roster[0].FirstName)
		})
	})

	t.Run("physio token is refused on the patient surface", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			access, _ := registerPhysio(t, url)

			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url+"/pazienti/profile", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+access)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "roles must not cross surfaces: %+v", env)
		})
	})

	t.Run("patient checks email then registers", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, err := http.Post(url+"/pazienti/auth/check-email", "application/json", strings.NewReader(`{"email": "marco@mail.example"}`))
			require.NoError(t, err)
			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusNotFound, resp.StatusCode, "unknown email: %+v", env)

			data := `{
				"firstName": "Mario",
				"lastName": "Bianchi",
				"email": "marco@mail.example",
				"password": "StrongEnoughPassword",
				"birthDate": "1980-05-20",
				"gender": "M"
			}`
			resp, err = http.Post(url+"/pazienti/auth/register", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			env = readEnvelope(t, resp)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %+v", env)

			// Once claimed the email reads as taken
			resp, err = http.Post(url+"/pazienti/auth/check-email", "application/json", strings.NewReader(`{"email": "marco@mail.example"}`))
			require.NoError(t, err)
			env = readEnvelope(t, resp)
			require.Equal(t, http.StatusConflict, resp.StatusCode, "claimed email: %+v", env)
		})
	})

	t.Run("validation failure reports the offending fields", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			data := `{"firstName": "Anna", "lastName": "Rossi", "email": "not-an-email", "password": "short"}`
			resp, err := http.Post(url+"/fisioterapista/auth/register", "application/json", strings.NewReader(data))
			require.NoError(t, err)

			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var fields map[string]string
			require.NoError(t, json.Unmarshal(env.Data, &fields))
			assert.Contains(t, fields, "email")
			assert.Contains(t, fields, "password")
		})
	})

	t.Run("logout clears the cookie and is idempotent", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			_, refreshCookie := registerPhysio(t, url)

			logout := func(withCookie bool) *http.Response {
				req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url+"/fisioterapista/auth/logout", nil)
				require.NoError(t, err)
				if withCookie {
					req.AddCookie(refreshCookie)
				}
				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				_ = resp.Body.Close()
				return resp
			}

			resp := logout(true)
			require.Equal(t, http.StatusNoContent, resp.StatusCode)
			require.Len(t, resp.Cookies(), 1)
			assert.Less(t, resp.Cookies()[0].MaxAge, 0, "logout must expire the cookie")

			require.Equal(t, http.StatusNoContent, logout(true).StatusCode, "second logout")
			require.Equal(t, http.StatusNoContent, logout(false).StatusCode, "logout without cookie")
		})
	})

	// The refresh cookie is revoked when the account starts a new
	// session elsewhere, and refresh reports it
	t.Run("stolen refresh token is useless after re login", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			_, stolen := registerPhysio(t, url)

			data := `{"email": "anna@clinic.example", "password": "StrongEnoughPassword"}`
			resp, err := http.Post(url+"/fisioterapista/auth/login", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			_ = resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url+"/fisioterapista/auth/refresh", nil)
			require.NoError(t, err)
			req.AddCookie(stolen)

			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			env := readEnvelope(t, resp)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "old session token: %+v", env)
		})
	})
}
