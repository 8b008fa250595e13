package session

import (
	"context"
	"testing"
	"time"

	"pocket-wallet-go/internal/database"
	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewService(ctx, models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.UpsertUser(ctx, store.UpsertUserParams{Id: "user1"})
	require.NoError(t, err)

	return NewManager(db, ttl)
}

func TestIssueAndValidate(t *testing.T) {
	manager := setupManager(t, time.Hour)
	ctx := context.Background()

	session, err := manager.Issue(ctx, "user1", "203.0.113.7", "test-agent")
	require.NoError(t, err)

	// 32 random bytes, hex encoded.
	assert.Len(t, session.Token, 64)
	assert.Equal(t, "user1", session.UserId)

	validated, err := manager.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Id, validated.Id)
}

func TestIssue_ReplacesExistingSessions(t *testing.T) {
	manager := setupManager(t, time.Hour)
	ctx := context.Background()

	first, err := manager.Issue(ctx, "user1", "", "")
	require.NoError(t, err)

	second, err := manager.Issue(ctx, "user1", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// The old token is gone, not merely superseded.
	_, err = manager.Validate(ctx, first.Token)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	_, err = manager.Validate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestValidate_Expired(t *testing.T) {
	manager := setupManager(t, time.Hour)
	ctx := context.Background()

	session, err := manager.Issue(ctx, "user1", "", "")
	require.NoError(t, err)

	// Move the clock past the expiry; the row stays but validation fails.
	manager.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = manager.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestValidate_EmptyAndUnknownTokens(t *testing.T) {
	manager := setupManager(t, time.Hour)
	ctx := context.Background()

	_, err := manager.Validate(ctx, "")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	_, err = manager.Validate(ctx, "deadbeef")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestNewManager_DefaultTTL(t *testing.T) {
	manager := setupManager(t, 0)
	ctx := context.Background()

	session, err := manager.Issue(ctx, "user1", "", "")
	require.NoError(t, err)

	// Zero TTL falls back to seven days.
	expected := time.Now().Add(7 * 24 * time.Hour)
	assert.WithinDuration(t, expected, session.ExpiresAt, time.Minute)
}
