package domain

import "time"

// RefreshToken is the persisted half of a session. The signed token itself is
// never stored; the record is keyed by the jti embedded in the token.
//
// Lifecycle: active (RevokedAt nil, not expired) → consumed (row deleted on
// rotation) or revoked (RevokedAt set on logout). Both are terminal for this
// token id.
type RefreshToken struct {
	ID        string // jti, unique per issuance
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Session is what signup/login/refresh return to the caller. Only the refresh
// half is durable; the pair itself is never persisted.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // access token lifetime in seconds
}
