package http

import (
	"errors"
	"net/http"

	"github.com/springmeet/springmeet/internal/api/domain"
	"github.com/springmeet/springmeet/internal/api/service"
	"github.com/springmeet/springmeet/pkg/httpx"
)

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// SessionResponse carries a freshly issued token pair.
type SessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
	User         *UserResponse `json:"user,omitempty"`
}

// OKResponse is the body for endpoints that only signal completion.
type OKResponse struct {
	OK bool `json:"ok"`
}

func newUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

func newSessionResponse(s *domain.Session, u *domain.User) SessionResponse {
	resp := SessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
	}
	if u != nil {
		resp.User = newUserResponse(u)
	}
	return resp
}

// writeServiceError maps service sentinels onto the HTTP error taxonomy.
// Anything unrecognized is a backing-store failure and surfaces as 503; raw
// storage errors never reach the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "Forbidden")
	default:
		httpx.WriteError(w, http.StatusServiceUnavailable, "Service unavailable")
	}
}
