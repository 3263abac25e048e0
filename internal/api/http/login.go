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

type LoginHandler struct {
	SessionService *service.SessionService
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP handles credential login.
//
//	@Summary		Log in with email and password
//	@Description	Verifies credentials and returns a session. Unknown accounts and wrong passwords produce the same 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest		true	"Login payload"
//	@Success		200		{object}	SessionResponse		"Session issued"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid credentials"
//	@Failure		503		{object}	httpx.ErrorResponse	"Backing store unavailable"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	session, user, err := h.SessionService.Login(ctx, req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		if !service.IsClientError(err) {
			l.Error("login failed", slog.Any("error", err))
		}
		writeServiceError(w, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newSessionResponse(session, user))
}
