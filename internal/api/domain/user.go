package domain

import "time"

// Roles a user can hold. Role checks compare against these values.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string // scrypt encoded
	Role         string
	CreatedAt    time.Time
}
