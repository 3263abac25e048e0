package store

import (
	"context"
	"errors"

	"github.com/springmeet/springmeet/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
//
// Session mutations are individual statements relying on the database's own
// atomicity: a crash between the delete and the insert of a refresh rotation
// costs the user a re-login, never a security bypass, so no multi-statement
// transaction surface is exposed.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Memberships() Memberships

	// ApplyMigrations applies any pending embedded schema migrations.
	ApplyMigrations() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and duplicate-signup checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// AdminExists reports whether any admin user is present, for the
	// one-time bootstrap flow.
	AdminExists(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record keyed by jti.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByID returns the record for a jti.
	GetRefreshTokenByID(ctx context.Context, id string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes a consumed record during rotation.
	DeleteRefreshToken(ctx context.Context, id string) error

	// RevokeRefreshToken sets revoked_at, keeping the row for auditability.
	RevokeRefreshToken(ctx context.Context, id string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type Memberships interface {
	// IsActiveMember reports whether the user holds an active RSVP
	// (going/maybe/waitlist) for the meetup.
	IsActiveMember(ctx context.Context, meetupID, userID string) (bool, error)

	// CreateMeetup inserts a meetup row (id provided by the app via ULID).
	CreateMeetup(ctx context.Context, id, title, createdBy string) error

	// UpsertMember sets the RSVP status for a user on a meetup.
	UpsertMember(ctx context.Context, meetupID, userID, rsvpStatus string) error
}
