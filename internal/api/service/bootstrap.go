package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/springmeet/springmeet/internal/api/domain"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/pkg/cryptox"
	"github.com/springmeet/springmeet/pkg/idx"
	"github.com/springmeet/springmeet/pkg/slogx"
)

var (
	ErrBootstrapDisabled     = errors.New("bootstrap disabled")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrAdminExists           = errors.New("admin already exists")
)

// BootstrapService creates the first admin account. It is gated by a
// pre-shared key configured at deploy time and refuses to run once any admin
// exists, so it cannot be used for privilege escalation afterwards.
type BootstrapService struct {
	Store store.Store
	Key   string // Pre-configured bootstrap key; empty disables the flow.
}

func (s *BootstrapService) CreateAdmin(ctx context.Context, key, email, displayName, password string) (*domain.User, error) {
	l := slogx.FromContext(ctx)

	if s.Key == "" {
		return nil, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.Key)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return nil, ErrBootstrapUnauthorized
	}

	exists, err := s.Store.Users().AdminExists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		l.Warn("attempted bootstrap with an admin already present")
		return nil, ErrAdminExists
	}

	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") || displayName == "" || len(password) < minPasswordLength {
		return nil, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	l.Info("bootstrapped admin account", slog.String("user_id", u.ID))
	return &u, nil
}
