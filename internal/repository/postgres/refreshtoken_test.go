package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/testutil"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newToken := func(principalID int64, kind models.PrincipalKind, token string) models.RefreshToken {
		return models.RefreshToken{
			ID:            uuid.New(),
			PrincipalID:   principalID,
			PrincipalKind: kind,
			Token:         token,
			CreatedAt:     mustParseTime("2024-01-01 19:00:01Z"),
			ExpiresAt:     mustParseTime("2200-01-01 03:00:02Z"),
			RevokedAt:     nil,
		}
	}

	t.Run("create and get token ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			token := newToken(1, models.KindPhysio, "secret-token")

			err := repo.Create(t.Context(), token)
			require.NoError(t, err)

			got, err := repo.Get(t.Context(), token.Token)

			require.NoError(t, err)
			require.Equal(t, token.ID, got.ID)
			require.Equal(t, token.PrincipalID, got.PrincipalID)
			require.Equal(t, token.PrincipalKind, got.PrincipalKind)
			require.WithinDuration(t, token.CreatedAt, got.CreatedAt, 0)
			require.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, 0)
			require.Nil(t, got.RevokedAt, "fresh token must not be revoked")
		})
	})

	t.Run("get unknown token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			_, err := repo.Get(t.Context(), "never-issued")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("revoke token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			token := newToken(1, models.KindPhysio, "secret-token")
			require.NoError(t, repo.Create(t.Context(), token))

			err := repo.Revoke(t.Context(), token.Token)
			require.NoError(t, err)

			got, err := repo.Get(t.Context(), token.Token)
			require.NoError(t, err, "revoked tokens stay in the ledger")
			require.NotNil(t, got.RevokedAt)
			require.WithinDuration(t, time.Now(), *got.RevokedAt, 50*time.Millisecond)
		})
	})

	t.Run("revoke keeps first revocation time", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			token := newToken(1, models.KindPhysio, "secret-token")
			require.NoError(t, repo.Create(t.Context(), token))

			require.NoError(t, repo.Revoke(t.Context(), token.Token))
			first, err := repo.Get(t.Context(), token.Token)
			require.NoError(t, err)

			time.Sleep(100 * time.Millisecond)
			require.NoError(t, repo.Revoke(t.Context(), token.Token), "revoking twice is not an error")
			second, err := repo.Get(t.Context(), token.Token)
			require.NoError(t, err)

			assert.WithinDuration(t, *first.RevokedAt, *second.RevokedAt, 0, "second revoke must not move the timestamp")
		})
	})

	t.Run("revoke unknown token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			err := repo.Revoke(t.Context(), "never-issued")

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("revoke all for principal", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			require.NoError(t, repo.Create(t.Context(), newToken(1, models.KindPhysio, "physio-one")))
			require.NoError(t, repo.Create(t.Context(), newToken(1, models.KindPhysio, "physio-two")))

			// Same numeric id, different kind: must stay untouched
			require.NoError(t, repo.Create(t.Context(), newToken(1, models.KindPatient, "patient-one")))

			revoked, err := repo.RevokeAllForPrincipal(t.Context(), models.KindPhysio, 1)

			require.NoError(t, err)
			assert.Equal(t, int64(2), revoked)

			got, err := repo.Get(t.Context(), "patient-one")
			require.NoError(t, err)
			assert.Nil(t, got.RevokedAt, "the patient's token must survive the physio's revocation")
		})
	})

	t.Run("revoke all skips already revoked", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			require.NoError(t, repo.Create(t.Context(), newToken(7, models.KindPatient, "old-token")))
			require.NoError(t, repo.Revoke(t.Context(), "old-token"))

			revoked, err := repo.RevokeAllForPrincipal(t.Context(), models.KindPatient, 7)

			require.NoError(t, err)
			assert.Equal(t, int64(0), revoked)
		})
	})
}
