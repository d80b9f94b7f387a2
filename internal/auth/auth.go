package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/stockpilot-io/stockpilot/internal/config"
	"github.com/stockpilot-io/stockpilot/internal/models"
	"github.com/stockpilot-io/stockpilot/internal/store"
)

var (
	// ErrInvalidCredentials is returned on an unknown username or a
	// password mismatch. Callers must not distinguish the two cases.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserInactive is returned when the account exists but is disabled.
	ErrUserInactive = errors.New("account is inactive")
	// ErrDuplicateUser is returned when registering a username that is
	// already taken.
	ErrDuplicateUser = errors.New("username already registered")
	// ErrInvalidToken is returned when a session token is unknown, expired
	// or bound to a disabled account.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Service implements registration, credential checks and the session token
// lifecycle (issue, resolve, revoke). All state lives in the injected store.
type Service struct {
	store      *store.Store
	tokenTTL   time.Duration
	tokenBytes int
	bcryptCost int
}

// New creates an auth service backed by the given store.
func New(st *store.Store, cfg *config.Config) *Service {
	return &Service{
		store:      st,
		tokenTTL:   cfg.Auth.TokenTTL,
		tokenBytes: cfg.Auth.TokenBytes,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new active user with a hashed password.
func (s *Service) Register(username, password, fullName string) (*models.User, error) {
	user, err := models.NewUser(username, password, fullName, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err = s.store.CreateUser(user)
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrDuplicateUser
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates a username/password pair. The credential check
// runs before the active-flag check so that a disabled account with a wrong
// password still reports bad credentials.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// Issue creates a session token for a user and returns the token string and
// its expiry. Token uniqueness comes from the size of the random space; if
// the store still reports a collision, one fresh token is tried before
// giving up.
func (s *Service) Issue(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.generateToken()
		if err != nil {
			return "", time.Time{}, err
		}

		err = s.store.CreateSession(user.ID, token, expiresAt)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return "", time.Time{}, err
		}
		return token, expiresAt, nil
	}
	return "", time.Time{}, fmt.Errorf("token collision persisted after retry")
}

// Resolve looks up a session token and returns its owner. Expired tokens
// are deleted on first access rather than by a background job; tokens held
// by deactivated or deleted users are removed the same way.
func (s *Service) Resolve(token string) (*models.User, error) {
	session, err := s.store.GetSessionByToken(token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		if err := s.store.DeleteSession(token); err != nil {
			return nil, err
		}
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		if err := s.store.DeleteSession(token); err != nil {
			return nil, err
		}
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if !user.Active {
		if err := s.store.DeleteSession(token); err != nil {
			return nil, err
		}
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Revoke deletes a session token. Revoking a token that was never issued or
// was already revoked is a no-op.
func (s *Service) Revoke(token string) error {
	return s.store.DeleteSession(token)
}

// Deactivate disables an account and revokes every session it holds, so a
// disabled user loses access immediately rather than at token expiry.
func (s *Service) Deactivate(userID int64) error {
	if err := s.store.SetUserActive(userID, false); err != nil {
		return err
	}
	return s.store.DeleteUserSessions(userID)
}

// CleanupExpiredSessions deletes expired session rows. Resolve already
// enforces expiry lazily; this only keeps the table from growing.
func (s *Service) CleanupExpiredSessions() (int64, error) {
	return s.store.DeleteExpiredSessions()
}

// generateToken draws a URL-safe random token of the configured size.
func (s *Service) generateToken() (string, error) {
	b := make([]byte, s.tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
