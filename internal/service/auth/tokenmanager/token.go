package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fisiocare/backend/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
)

// Claims carried by both access and refresh tokens.
// Role is included so a physiotherapist token can never be replayed
// on the patient surface even when the numeric ids collide.
type Claims struct {
	jwt.RegisteredClaims
	UID  int64                `json:"uid"`
	Role models.PrincipalKind `json:"role"`
}

// Token manager with sensible defaults
type Config struct {
	// Secret keys to sign access and refresh tokens
	// Both required to be set
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager signs and verifies JWTs. It is stateless: the refresh
// token ledger lives in the auth service, not here.
type TokenManager struct {
	accessKey  string
	refreshKey string

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		accessKey:  cfg.AccessSecret,
		refreshKey: cfg.RefreshSecret,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// GeneratePair issues a signed access and refresh token for the principal
func (m *TokenManager) GeneratePair(principal models.Principal) (models.TokenPair, error) {
	var pair models.TokenPair
	now := time.Now().Truncate(time.Second)
	accessExpiresAt := now.Add(m.accessTTL)
	refreshExpiresAt := now.Add(m.refreshTTL)

	access, err := m.sign(principal, now, accessExpiresAt, m.accessKey)
	if err != nil {
		return pair, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	refresh, err := m.sign(principal, now, refreshExpiresAt, m.refreshKey)
	if err != nil {
		return pair, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.TokenPair{
		Access:  models.IssuedToken{Value: access, ExpiresAt: accessExpiresAt},
		Refresh: models.IssuedToken{Value: refresh, ExpiresAt: refreshExpiresAt},
	}, nil
}

// ParseAccess verifies signature and expiry of an access token
func (m *TokenManager) ParseAccess(access string) (models.Principal, error) {
	return m.parse(access, m.accessKey)
}

// ParseRefresh verifies signature and expiry of a refresh token
func (m *TokenManager) ParseRefresh(refresh string) (models.Principal, error) {
	return m.parse(refresh, m.refreshKey)
}

func (m *TokenManager) sign(principal models.Principal, now time.Time, expiresAt time.Time, key string) (string, error) {
	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UID:  principal.ID,
			Role: principal.Kind,
		},
	)

	return token.SignedString([]byte(key))
}

func (m *TokenManager) parse(tokenString string, key string) (models.Principal, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			return []byte(key), nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil {
		return models.Principal{}, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	return models.Principal{ID: claims.UID, Kind: claims.Role}, nil
}
