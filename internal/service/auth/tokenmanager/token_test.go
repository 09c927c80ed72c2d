package tokenmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisiocare/backend/internal/models"
)

func Test_New(t *testing.T) {
	t.Parallel()

	t.Run("requires both secrets", func(t *testing.T) {
		_, err := New(Config{AccessSecret: "", RefreshSecret: "refresh"})
		require.Error(t, err)

		_, err = New(Config{AccessSecret: "access", RefreshSecret: ""})
		require.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		m, err := New(Config{AccessSecret: "access", RefreshSecret: "refresh"})

		require.NoError(t, err)
		require.Equal(t, 7*24*time.Hour, m.RefreshTTL())
	})
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	m, err := New(Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
	require.NoError(t, err)

	physio := models.Principal{ID: 42, Kind: models.KindPhysio}

	t.Run("access token round trip", func(t *testing.T) {
		pair, err := m.GeneratePair(physio)
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access.Value)

		got, err := m.ParseAccess(pair.Access.Value)

		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ID)
		assert.Equal(t, models.KindPhysio, got.Kind)
	})

	t.Run("refresh token round trip keeps role", func(t *testing.T) {
		patient := models.Principal{ID: 42, Kind: models.KindPatient}

		pair, err := m.GeneratePair(patient)
		require.NoError(t, err)

		got, err := m.ParseRefresh(pair.Refresh.Value)

		require.NoError(t, err)
		assert.Equal(t, models.KindPatient, got.Kind)
	})

	t.Run("refresh token is not a valid access token", func(t *testing.T) {
		pair, err := m.GeneratePair(physio)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Refresh.Value)

		require.Error(t, err, "tokens signed with different secrets must not be interchangeable")
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other, err := New(Config{AccessSecret: "other-secret", RefreshSecret: "another-secret"})
		require.NoError(t, err)

		pair, err := m.GeneratePair(physio)
		require.NoError(t, err)

		_, err = other.ParseAccess(pair.Access.Value)
		require.Error(t, err)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		short, err := New(Config{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     -time.Minute,
		})
		require.NoError(t, err)

		pair, err := short.GeneratePair(physio)
		require.NoError(t, err)

		_, err = short.ParseAccess(pair.Access.Value)
		require.Error(t, err)
	})

	t.Run("expiry matches ttl", func(t *testing.T) {
		pair, err := m.GeneratePair(physio)
		require.NoError(t, err)

		assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.Access.ExpiresAt, 5*time.Second)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), pair.Refresh.ExpiresAt, 5*time.Second)
	})
}
