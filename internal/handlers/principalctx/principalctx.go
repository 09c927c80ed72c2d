package principalctx

import (
	"context"

	"github.com/fisiocare/backend/internal/models"
)

type ctxKey string

const principalKey ctxKey = "principal"

func NewContext(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func FromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// MustFromContext is for handlers behind the auth middleware, where a
// missing principal is a programming error
func MustFromContext(ctx context.Context) models.Principal {
	p, ok := FromContext(ctx)
	if !ok {
		panic("principal not found in context")
	}
	return p
}
