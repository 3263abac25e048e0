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

type RefreshHandler struct {
	SessionService *service.SessionService
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP exchanges a refresh token for a new session.
//
//	@Summary		Rotate a refresh token
//	@Description	Exchanges a valid refresh token for a new token pair. The presented token is consumed; reusing it returns 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest		true	"Refresh payload"
//	@Success		200		{object}	SessionResponse		"New session issued"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid, expired, revoked, or already-used refresh token"
//	@Failure		503		{object}	httpx.ErrorResponse	"Backing store unavailable"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	session, err := h.SessionService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("refresh", "failure").Inc()
		if !service.IsClientError(err) {
			l.Error("refresh failed", slog.Any("error", err))
		}
		writeServiceError(w, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("refresh", "success").Inc()
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newSessionResponse(session, nil))
}
