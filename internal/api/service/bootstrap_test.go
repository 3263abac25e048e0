package service

import (
	"context"
	"testing"

	"github.com/springmeet/springmeet/internal/api/domain"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/internal/api/store/drivers/sqlite"

	"github.com/stretchr/testify/require"
)

func newBootstrapService(t *testing.T, key string) (*BootstrapService, store.Store) {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	return &BootstrapService{Store: s, Key: key}, s
}

func TestBootstrap_CreateAdmin(t *testing.T) {
	svc, st := newBootstrapService(t, "deploy-key")
	ctx := context.Background()

	u, err := svc.CreateAdmin(ctx, "deploy-key", "admin@example.com", "Admin", "correct horse")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	exists, err := st.Users().AdminExists(ctx)
	require.NoError(t, err)
	require.True(t, exists)

	// A second bootstrap is refused even with the right key.
	_, err = svc.CreateAdmin(ctx, "deploy-key", "other@example.com", "Other", "correct horse")
	require.ErrorIs(t, err, ErrAdminExists)
}

func TestBootstrap_KeyGate(t *testing.T) {
	svc, _ := newBootstrapService(t, "deploy-key")
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "wrong-key", "admin@example.com", "Admin", "correct horse")
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)
}

func TestBootstrap_DisabledWithoutKey(t *testing.T) {
	svc, _ := newBootstrapService(t, "")
	ctx := context.Background()

	// An empty configured key disables the flow outright, even if the caller
	// also sends an empty key.
	_, err := svc.CreateAdmin(ctx, "", "admin@example.com", "Admin", "correct horse")
	require.ErrorIs(t, err, ErrBootstrapDisabled)
}
