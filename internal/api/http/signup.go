package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/springmeet/springmeet/internal/api/metrics"
	"github.com/springmeet/springmeet/internal/api/service"
	"github.com/springmeet/springmeet/pkg/httpx"
	"github.com/springmeet/springmeet/pkg/slogx"
)

type SignupHandler struct {
	SessionService *service.SessionService
}

type SignupRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// ServeHTTP handles user registration.
//
//	@Summary		Register a new account
//	@Description	Creates a user account and returns an initial session (access + refresh token pair).
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignupRequest			true	"Signup payload"
//	@Success		201		{object}	SessionResponse			"Account created, session issued"
//	@Failure		400		{object}	httpx.ErrorResponse		"Malformed body or invalid fields"
//	@Failure		409		{object}	httpx.ErrorResponse		"Email already registered"
//	@Failure		503		{object}	httpx.ErrorResponse		"Backing store unavailable"
//	@Router			/v1/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	session, user, err := h.SessionService.Signup(ctx, req.Email, req.DisplayName, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		if !service.IsClientError(err) {
			l.Error("signup failed", slog.Any("error", err))
		}
		writeServiceError(w, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, newSessionResponse(session, user))
}
