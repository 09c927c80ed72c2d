package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one row of the refresh token ledger
type RefreshToken struct {
	ID            uuid.UUID
	PrincipalID   int64
	PrincipalKind PrincipalKind
	Token         string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	RevokedAt     *time.Time // nil while the token is still honored
}

func (t RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by the auth service on login, register and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
