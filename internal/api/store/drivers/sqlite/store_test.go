package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/springmeet/springmeet/internal/api/domain"
	"github.com/springmeet/springmeet/internal/api/store"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestUsers_CreateAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := domain.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: "scrypt$00$11",
		Role:         domain.RoleUser,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	byID, err := s.Users().GetUserByID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", byID.Email)
	require.Equal(t, domain.RoleUser, byID.Role)
	require.False(t, byID.CreatedAt.IsZero())

	byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", byEmail.ID)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := domain.User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	u.ID = "user-2"
	err := s.Users().CreateUser(ctx, u)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsers_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Users().GetUserByID(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_AdminExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.Users().AdminExists(ctx)
	require.NoError(t, err)
	require.False(t, exists)

	admin := domain.User{ID: "admin-1", Email: "admin@example.com", DisplayName: "Admin", PasswordHash: "h", Role: domain.RoleAdmin}
	require.NoError(t, s.Users().CreateUser(ctx, admin))

	exists, err = s.Users().AdminExists(ctx)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRefreshTokens_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := domain.User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	expiresAt := time.Now().Add(time.Hour).UTC()
	rt := domain.RefreshToken{ID: "jti-1", UserID: "user-1", ExpiresAt: expiresAt}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := s.RefreshTokens().GetRefreshTokenByID(ctx, "jti-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", got.UserID)
	require.Nil(t, got.RevokedAt)
	require.WithinDuration(t, expiresAt, got.ExpiresAt, time.Second)

	// Revocation sets revoked_at but keeps the row.
	require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "jti-1"))
	got, err = s.RefreshTokens().GetRefreshTokenByID(ctx, "jti-1")
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)

	// Deletion removes it entirely.
	require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, "jti-1"))
	_, err = s.RefreshTokens().GetRefreshTokenByID(ctx, "jti-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokens_DeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := domain.User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	expired := domain.RefreshToken{ID: "jti-old", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Hour).UTC()}
	live := domain.RefreshToken{ID: "jti-new", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour).UTC()}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, expired))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, live))

	require.NoError(t, s.RefreshTokens().DeleteExpiredRefreshTokens(ctx))

	_, err := s.RefreshTokens().GetRefreshTokenByID(ctx, "jti-old")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RefreshTokens().GetRefreshTokenByID(ctx, "jti-new")
	require.NoError(t, err)
}

func TestMemberships_IsActiveMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := domain.User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Memberships().CreateMeetup(ctx, "meetup-1", "Evening soak", "user-1"))

	// No membership yet.
	active, err := s.Memberships().IsActiveMember(ctx, "meetup-1", "user-1")
	require.NoError(t, err)
	require.False(t, active)

	for _, status := range domain.ActiveRSVPStatuses {
		require.NoError(t, s.Memberships().UpsertMember(ctx, "meetup-1", "user-1", status))
		active, err = s.Memberships().IsActiveMember(ctx, "meetup-1", "user-1")
		require.NoError(t, err)
		require.True(t, active, "status %q should count as active", status)
	}

	// A user who left no longer counts.
	require.NoError(t, s.Memberships().UpsertMember(ctx, "meetup-1", "user-1", "left"))
	active, err = s.Memberships().IsActiveMember(ctx, "meetup-1", "user-1")
	require.NoError(t, err)
	require.False(t, active)
}
