package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/models"
)

type authService interface {
	AuthenticateAccess(ctx context.Context, access string, kind models.PrincipalKind) (models.Principal, error)
}

// Auth guards a route family for one principal kind. The access token
// comes in the Authorization header as a Bearer token.
func Auth(as authService, kind models.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := bearerToken(r)
			if !ok {
				render.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			principal, err := as.AuthenticateAccess(r.Context(), access, kind)
			if err != nil {
				render.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := principalctx.NewContext(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	return token, true
}
