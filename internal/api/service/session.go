package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/springmeet/springmeet/internal/api/domain"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/pkg/cryptox"
	"github.com/springmeet/springmeet/pkg/idx"
	"github.com/springmeet/springmeet/pkg/slogx"
	"github.com/springmeet/springmeet/pkg/tokenx"
)

const minPasswordLength = 8

var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrEmailTaken   = errors.New("email_taken")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// IsClientError reports whether err maps to a caller mistake rather than a
// server-side failure, so handlers can decide what deserves an error log.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrBootstrapDisabled) ||
		errors.Is(err, ErrBootstrapUnauthorized) ||
		errors.Is(err, ErrAdminExists)
}

// SessionService owns the signup/login/refresh/logout lifecycle. It is the
// only component that maps credential and token failures onto the error
// sentinels above; cryptox and tokenx just report valid/invalid.
type SessionService struct {
	Store      store.Store
	Codec      *tokenx.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Signup registers a new user and immediately issues a session for them.
func (s *SessionService) Signup(ctx context.Context, email, displayName, password string) (*domain.Session, *domain.User, error) {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") || displayName == "" || len(password) < minPasswordLength {
		return nil, nil, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	session, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	l.Info("user signed up", slog.String("user_id", u.ID))
	return session, &u, nil
}

// Login verifies credentials and issues a fresh session. A missing user and a
// wrong password return the same error so accounts cannot be enumerated.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, nil, ErrUnauthorized
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		l.Info("login password verification failed", slog.String("user_id", u.ID))
		return nil, nil, ErrUnauthorized
	}

	session, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, &u, nil
}

// Refresh exchanges a valid refresh token for a brand-new session. The
// presented token is single-use: its record is deleted before the new pair is
// issued, so replaying it afterwards looks identical to an unknown token.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	now := time.Now()

	claims, err := s.Codec.Verify(refreshToken, tokenx.TypeRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByID(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	// Storage-layer expiry and revocation checks back up the token's own exp
	// claim, so a revoked record wins even if the signature still verifies.
	if rt.RevokedAt != nil || now.After(rt.ExpiresAt) || rt.UserID != claims.Subject {
		return nil, ErrUnauthorized
	}

	if err := s.Store.RefreshTokens().DeleteRefreshToken(ctx, rt.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return s.issueSession(ctx, rt.UserID)
}

// Logout revokes the refresh token's stored record. Invalid or already-used
// tokens are treated as success, so the endpoint leaks nothing and can be
// retried freely.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.Codec.Verify(refreshToken, tokenx.TypeRefresh)
	if err != nil {
		return nil
	}

	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, claims.TokenID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Authenticate resolves a bearer access token to its user.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.Codec.Verify(accessToken, tokenx.TypeAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return &u, nil
}

// AuthorizeRole authenticates the bearer token and then requires the user's
// role to be one of allowed.
func (s *SessionService) AuthorizeRole(ctx context.Context, accessToken string, allowed ...string) (*domain.User, error) {
	u, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	for _, role := range allowed {
		if u.Role == role {
			return u, nil
		}
	}
	return nil, ErrForbidden
}

// issueSession mints an access/refresh pair and persists the refresh record.
// The record is written before the pair is returned so a refresh token the
// client holds is always redeemable.
func (s *SessionService) issueSession(ctx context.Context, userID string) (*domain.Session, error) {
	accessToken, err := s.Codec.IssueAccess(userID, s.AccessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, tokenID, expiresAt, err := s.Codec.IssueRefresh(userID, s.RefreshTTL)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.AccessTTL.Seconds()),
	}, nil
}
