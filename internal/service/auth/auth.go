package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fisiocare/backend/internal/apperrors"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/auth/tokenmanager"
)

// Interface to create or compare account password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret keys to sign access and refresh tokens
	AccessSecret  string
	RefreshSecret string

	// Hasher used during registration and login
	// Bcrypt is used if not set
	Hasher PasswordHasher

	// Access and refresh token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// AuthService owns credentials and the refresh token ledger for both
// account kinds. A principal has at most one live refresh token: issuing
// a new pair revokes every other live row inside the same transaction.
type AuthService struct {
	tokens  *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewAuthService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	tokens, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	return &AuthService{
		tokens:  tokens,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// RefreshTokenTTL is the cookie lifetime handlers should use
func (s *AuthService) RefreshTokenTTL() time.Duration {
	return s.tokens.RefreshTTL()
}

type RegisterPhysioParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (s *AuthService) RegisterPhysio(ctx context.Context, arg RegisterPhysioParams) (models.Physio, models.TokenPair, error) {
	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return models.Physio{}, models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	physio, err := s.storage.Physio().Create(ctx, repository.CreatePhysioParams{
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		Email:        arg.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return models.Physio{}, models.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, models.Principal{ID: physio.ID, Kind: models.KindPhysio})
	return physio, pair, err
}

type RegisterPatientParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	BirthDate time.Time
	Gender    string
}

// RegisterPatient claims a record the physiotherapist pre created, or
// creates a fresh one. A record that already holds a password stays
// untouched and the call fails with ErrPatientRegistered.
func (s *AuthService) RegisterPatient(ctx context.Context, arg RegisterPatientParams) (models.Patient, models.TokenPair, error) {
	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return models.Patient{}, models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	patient, err := s.storage.Patient().GetByEmail(ctx, arg.Email)

	switch {
	case err == nil:
		if patient.Registered() {
			return models.Patient{}, models.TokenPair{}, apperrors.ErrPatientRegistered
		}
		if err := s.storage.Patient().SetPassword(ctx, patient.ID, hash); err != nil {
			return models.Patient{}, models.TokenPair{}, err
		}
		patient.PasswordHash = &hash
	case errors.Is(err, apperrors.ErrPatientNotFound):
		patient, err = s.storage.Patient().Create(ctx, repository.CreatePatientParams{
			FirstName:    arg.FirstName,
			LastName:     arg.LastName,
			Email:        arg.Email,
			PasswordHash: &hash,
			BirthDate:    arg.BirthDate,
			Gender:       arg.Gender,
		})
		if err != nil {
			return models.Patient{}, models.TokenPair{}, err
		}
	default:
		return models.Patient{}, models.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, models.Principal{ID: patient.ID, Kind: models.KindPatient})
	return patient, pair, err
}

// CheckEmail reports whether a patient may register with the email.
// Unknown email → ErrPatientNotFound, already claimed → ErrPatientRegistered.
func (s *AuthService) CheckEmail(ctx context.Context, email string) error {
	patient, err := s.storage.Patient().GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if patient.Registered() {
		return apperrors.ErrPatientRegistered
	}
	return nil
}

// Login verifies credentials of either account kind.
// Every credential failure maps to the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, kind models.PrincipalKind, email string, password string) (models.TokenPair, error) {
	var id int64
	var hash string

	switch kind {
	case models.KindPhysio:
		physio, err := s.storage.Physio().GetByEmail(ctx, email)
		if err != nil {
			return models.TokenPair{}, apperrors.ErrInvalidCredentials
		}
		id, hash = physio.ID, physio.PasswordHash
	case models.KindPatient:
		patient, err := s.storage.Patient().GetByEmail(ctx, email)
		if err != nil || !patient.Registered() {
			return models.TokenPair{}, apperrors.ErrInvalidCredentials
		}
		id, hash = patient.ID, *patient.PasswordHash
	default:
		return models.TokenPair{}, fmt.Errorf("unknown principal kind %q", kind)
	}

	if err := s.hasher.Compare(hash, password); err != nil {
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	return s.issuePair(ctx, models.Principal{ID: id, Kind: kind})
}

// Refresh validates the presented refresh token against the ledger and
// rotates it. The consumed row is revoked and the replacement inserted
// in one transaction, so a crash can not leave two live tokens.
func (s *AuthService) Refresh(ctx context.Context, kind models.PrincipalKind, refresh string) (models.TokenPair, error) {
	record, err := s.storage.Refresh().Get(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	if record.Revoked() {
		return models.TokenPair{}, apperrors.ErrRefreshTokenRevoked
	}

	if record.Expired(time.Now()) {
		_ = s.storage.Refresh().Revoke(ctx, refresh)
		return models.TokenPair{}, apperrors.ErrRefreshTokenExpired
	}

	principal, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", apperrors.ErrRefreshTokenInvalid, err)
	}

	// The signed claims must agree with the ledger row they rode in on
	if principal.ID != record.PrincipalID || principal.Kind != record.PrincipalKind || principal.Kind != kind {
		return models.TokenPair{}, apperrors.ErrRefreshTokenInvalid
	}

	pair, err := s.tokens.GeneratePair(principal)
	if err != nil {
		return pair, err
	}

	err = s.storage.InTx(ctx, func(store repository.Storage) error {
		if err := store.Refresh().Revoke(ctx, refresh); err != nil {
			return err
		}
		return store.Refresh().Create(ctx, ledgerRecord(principal, pair))
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while rotating refresh token. Err: %w", err)
	}

	return pair, nil
}

// Logout revokes the presented refresh token. Unknown or already revoked
// tokens are not an error, logout must be idempotent.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	err := s.storage.Refresh().Revoke(ctx, refresh)
	if err != nil && !errors.Is(err, apperrors.ErrRefreshTokenNotFound) {
		return err
	}
	return nil
}

// ChangePassword verifies the current password before setting a new one.
// Wrong current password maps to ErrInvalidCredentials.
func (s *AuthService) ChangePassword(ctx context.Context, physioID int64, oldPassword string, newPassword string) error {
	physio, err := s.storage.Physio().GetByID(ctx, physioID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(physio.PasswordHash, oldPassword); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.Physio().SetPassword(ctx, physioID, hash)
}

// AuthenticateAccess resolves an access token into a live principal of
// the wanted kind. Any failure maps to ErrInvalidCredentials.
func (s *AuthService) AuthenticateAccess(ctx context.Context, access string, kind models.PrincipalKind) (models.Principal, error) {
	principal, err := s.tokens.ParseAccess(access)
	if err != nil || principal.Kind != kind {
		return models.Principal{}, apperrors.ErrInvalidCredentials
	}

	// The account must still exist, tokens may outlive deletion
	switch kind {
	case models.KindPhysio:
		_, err = s.storage.Physio().GetByID(ctx, principal.ID)
	case models.KindPatient:
		_, err = s.storage.Patient().GetByID(ctx, principal.ID)
	}
	if err != nil {
		return models.Principal{}, apperrors.ErrInvalidCredentials
	}

	return principal, nil
}

// issuePair signs a fresh token pair and records the refresh token in the
// ledger, revoking every other live row of the principal on the way.
func (s *AuthService) issuePair(ctx context.Context, principal models.Principal) (models.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(principal)
	if err != nil {
		return pair, err
	}

	err = s.storage.InTx(ctx, func(store repository.Storage) error {
		if _, err := store.Refresh().RevokeAllForPrincipal(ctx, principal.Kind, principal.ID); err != nil {
			return err
		}
		return store.Refresh().Create(ctx, ledgerRecord(principal, pair))
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, nil
}

func ledgerRecord(principal models.Principal, pair models.TokenPair) models.RefreshToken {
	return models.RefreshToken{
		ID:            uuid.New(),
		PrincipalID:   principal.ID,
		PrincipalKind: principal.Kind,
		Token:         pair.Refresh.Value,
		CreatedAt:     time.Now().Truncate(time.Second),
		ExpiresAt:     pair.Refresh.ExpiresAt,
	}
}
