package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const createToken = `-- name: CreateRefreshToken
INSERT INTO refresh_tokens (id, principal_id, principal_kind, token, created_at, expires_at, revoked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (r *RefreshTokenRepo) Create(ctx context.Context, token models.RefreshToken) error {
	_, err := r.DB.Exec(ctx, createToken,
		token.ID, token.PrincipalID, token.PrincipalKind, token.Token,
		token.CreatedAt, token.ExpiresAt, token.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const getToken = `-- name: GetRefreshToken by the token string itself
SELECT id, principal_id, principal_kind, created_at, expires_at, revoked_at
FROM refresh_tokens
WHERE token = $1
`

// Get returns the ledger row even if it is expired or revoked already
func (r *RefreshTokenRepo) Get(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, tokenString)
	token, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.RefreshToken, error) {
		t := models.RefreshToken{Token: tokenString}
		err := row.Scan(&t.ID, &t.PrincipalID, &t.PrincipalKind, &t.CreatedAt, &t.ExpiresAt, &t.RevokedAt)
		return t, err
	})

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrRefreshTokenNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const revokeToken = `-- name: RevokeRefreshToken keeping the original revocation time
UPDATE refresh_tokens
SET revoked_at = COALESCE(revoked_at, $2)
WHERE token = $1
`

func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenString string) error {
	tag, err := r.DB.Exec(ctx, revokeToken, tokenString, time.Now())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRefreshTokenNotFound
	}
	return nil
}

const revokeAllForPrincipal = `-- name: RevokeAllForPrincipal live tokens only
UPDATE refresh_tokens
SET revoked_at = $3
WHERE principal_kind = $1 AND principal_id = $2 AND revoked_at IS NULL
`

func (r *RefreshTokenRepo) RevokeAllForPrincipal(ctx context.Context, kind models.PrincipalKind, principalID int64) (int64, error) {
	tag, err := r.DB.Exec(ctx, revokeAllForPrincipal, kind, principalID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}
