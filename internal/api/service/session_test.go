package service

import (
	"context"
	"testing"
	"time"

	"github.com/springmeet/springmeet/internal/api/domain"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/internal/api/store/drivers/sqlite"
	"github.com/springmeet/springmeet/pkg/tokenx"

	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T) (*SessionService, store.Store) {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	svc := &SessionService{
		Store:      s,
		Codec:      tokenx.NewCodec([]byte("test-secret")),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	}
	return svc, s
}

func TestSignup(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, u, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.Equal(t, int((15 * time.Minute).Seconds()), session.ExpiresIn)
	require.Equal(t, domain.RoleUser, u.Role)

	// Tokens must verify as their respective types.
	claims, err := svc.Codec.Verify(session.AccessToken, tokenx.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	_, err = svc.Codec.Verify(session.RefreshToken, tokenx.TypeRefresh)
	require.NoError(t, err)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		email       string
		displayName string
		password    string
	}{
		{"empty email", "", "Alice", "correct horse"},
		{"no at sign", "alice.example.com", "Alice", "correct horse"},
		{"empty display name", "alice@example.com", "", "correct horse"},
		{"short password", "alice@example.com", "Alice", "seven77"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Signup(ctx, tt.email, tt.displayName, tt.password)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "Alice@Example.com", "Alice Again", "correct horse")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	_, signedUp, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	session, u, err := svc.Login(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, signedUp.ID, u.ID)
	require.NotEmpty(t, session.RefreshToken)
}

func TestLogin_UniformFailure(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	// Unknown user and wrong password must be indistinguishable.
	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "correct horse")
	_, _, wrongPassErr := svc.Login(ctx, "alice@example.com", "wrong password")
	require.ErrorIs(t, unknownErr, ErrUnauthorized)
	require.ErrorIs(t, wrongPassErr, ErrUnauthorized)
}

func TestRefresh_Rotation(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, _, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// The consumed token is single-use: replaying it must fail.
	_, err = svc.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	// The rotated token still works.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_RejectsGarbageAndAccessTokens(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, _, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)

	// An access token presented as a refresh token is rejected.
	_, err = svc.Refresh(ctx, session.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_RevokedRecord(t *testing.T) {
	svc, st := newSessionService(t)
	ctx := context.Background()

	session, _, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	claims, err := svc.Codec.Verify(session.RefreshToken, tokenx.TypeRefresh)
	require.NoError(t, err)
	require.NoError(t, st.RefreshTokens().RevokeRefreshToken(ctx, claims.TokenID))

	// The signature still verifies, but the stored record wins.
	_, err = svc.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, _, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.RefreshToken))

	// The revoked token can no longer be exchanged.
	_, err = svc.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	// Logout is idempotent and succeeds for garbage input.
	require.NoError(t, svc.Logout(ctx, session.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "complete garbage"))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, signedUp, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, signedUp.ID, u.ID)

	_, err = svc.Authenticate(ctx, "bogus")
	require.ErrorIs(t, err, ErrUnauthorized)

	// A refresh token is not a valid request credential.
	_, err = svc.Authenticate(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeRole(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	session, _, err := svc.Signup(ctx, "alice@example.com", "Alice", "correct horse")
	require.NoError(t, err)

	u, err := svc.AuthorizeRole(ctx, session.AccessToken, domain.RoleUser, domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, u.Role)

	_, err = svc.AuthorizeRole(ctx, session.AccessToken, domain.RoleAdmin)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AuthorizeRole(ctx, "bogus", domain.RoleAdmin)
	require.ErrorIs(t, err, ErrUnauthorized)
}
