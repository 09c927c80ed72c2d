package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/models"
)

// Allow to use a function as auth service
type authFunc func(ctx context.Context, access string, kind models.PrincipalKind) (models.Principal, error)

func (f authFunc) AuthenticateAccess(ctx context.Context, access string, kind models.PrincipalKind) (models.Principal, error) {
	return f(ctx, access, kind)
}

func TestAuthMiddleware(t *testing.T) {
	// Simple handler that echoes the principal the middleware stored
	// Must always find one: the middleware either sets it or rejects
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalctx.FromContext(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := fmt.Fprintf(w, "%s:%d", principal.Kind, principal.ID)
		require.NoError(t, err, "should write principal to response")
	})

	t.Run("auth ok", func(t *testing.T) {
		// Service that accepts any token
		svc := authFunc(func(ctx context.Context, access string, kind models.PrincipalKind) (models.Principal, error) {
			require.Equal(t, "valid-token", access, "middleware must strip the Bearer prefix")
			return models.Principal{ID: 42, Kind: kind}, nil
		})

		srv := httptest.NewServer(Auth(svc, models.KindPhysio)(handler))
		defer srv.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer valid-token")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", string(body))
		require.Equal(t, "physio:42", string(body))
	})

	t.Run("auth fail", func(t *testing.T) {
		// Service that always fails
		svc := authFunc(func(ctx context.Context, access string, kind models.PrincipalKind) (models.Principal, error) {
			return models.Principal{}, errors.New("no way")
		})

		srv := httptest.NewServer(Auth(svc, models.KindPhysio)(handler))
		defer srv.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer whatever")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "should return status Unauthorized. Resp: %s", string(body))
	})

	t.Run("missing and malformed headers", func(t *testing.T) {
		svc := authFunc(func(ctx context.Context, access string, kind models.PrincipalKind) (models.Principal, error) {
			t.Fatal("the service must not be called without a bearer token")
			return models.Principal{}, nil
		})

		srv := httptest.NewServer(Auth(svc, models.KindPhysio)(handler))
		defer srv.Close()

		for _, header := range []string{"", "Basic dXNlcg==", "Bearer", "Bearer "} {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
			require.NoError(t, err)
			if header != "" {
				req.Header.Set("Authorization", header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = resp.Body.Close()

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "header %q must be rejected", header)
		}
	})
}
