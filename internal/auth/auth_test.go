package auth

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot-io/stockpilot/internal/config"
	"github.com/stockpilot-io/stockpilot/internal/database"
	"github.com/stockpilot-io/stockpilot/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.Auth.TokenTTL = 7 * 24 * time.Hour
	cfg.Auth.TokenBytes = 32
	cfg.Auth.BcryptCost = 4 // min cost, keeps the tests fast

	st := store.New(db)
	return New(st, cfg), st
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s, _ := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Active)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	got, err := s.Authenticate("alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate("nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)

	_, err = s.Register("alice", "other", "Alice Again")
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestAuthenticateInactive(t *testing.T) {
	s, st := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)
	require.NoError(t, st.SetUserActive(user.ID, false))

	_, err = s.Authenticate("alice", "s3cret")
	assert.ErrorIs(t, err, ErrUserInactive)

	// Wrong password on an inactive account still reports bad credentials
	_, err = s.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueAndResolve(t *testing.T) {
	s, _ := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)

	token, expiresAt, err := s.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	got, err := s.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
}

func TestResolveUnknownToken(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Resolve("never-issued")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveExpiredTokenDeletes(t *testing.T) {
	s, st := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)
	require.NoError(t, st.CreateSession(user.ID, "stale", time.Now().Add(-time.Minute)))

	_, err = s.Resolve("stale")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The expired row was deleted, not just denied
	_, err = st.GetSessionByToken("stale")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Resolve("stale")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveInactiveUserRevokes(t *testing.T) {
	s, st := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)
	token, _, err := s.Issue(user)
	require.NoError(t, err)

	require.NoError(t, st.SetUserActive(user.ID, false))

	_, err = s.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = st.GetSessionByToken(token)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRevokeIdempotent(t *testing.T) {
	s, _ := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)
	token, _, err := s.Issue(user)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(token))
	require.NoError(t, s.Revoke(token))
	require.NoError(t, s.Revoke("never-issued"))

	_, err = s.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMultipleConcurrentSessions(t *testing.T) {
	s, _ := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)

	first, _, err := s.Issue(user)
	require.NoError(t, err)
	second, _, err := s.Issue(user)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Revoking one session leaves the other valid
	require.NoError(t, s.Revoke(first))
	_, err = s.Resolve(second)
	assert.NoError(t, err)
}

func TestDeactivateRevokesSessions(t *testing.T) {
	s, _ := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)
	first, _, err := s.Issue(user)
	require.NoError(t, err)
	second, _, err := s.Issue(user)
	require.NoError(t, err)

	require.NoError(t, s.Deactivate(user.ID))

	_, err = s.Resolve(first)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Resolve(second)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Authenticate("alice", "s3cret")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestCleanupExpiredSessions(t *testing.T) {
	s, st := newTestService(t)

	user, err := s.Register("alice", "s3cret", "Alice Silva")
	require.NoError(t, err)
	require.NoError(t, st.CreateSession(user.ID, "stale-1", time.Now().Add(-time.Hour)))
	require.NoError(t, st.CreateSession(user.ID, "stale-2", time.Now().Add(-time.Minute)))
	token, _, err := s.Issue(user)
	require.NoError(t, err)

	n, err := s.CleanupExpiredSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.Resolve(token)
	assert.NoError(t, err)
}

func TestGenerateTokenUniqueness(t *testing.T) {
	s, _ := newTestService(t)

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		token, err := s.generateToken()
		require.NoError(t, err)
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[token] = struct{}{}
	}
}
