package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/springmeet/springmeet/internal/api/service"
	"github.com/springmeet/springmeet/pkg/httpx"
	"github.com/springmeet/springmeet/pkg/slogx"
)

type LogoutHandler struct {
	SessionService *service.SessionService
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP revokes a refresh token.
//
//	@Summary		Log out
//	@Description	Revokes the refresh token's stored record. Succeeds even for invalid or already-revoked tokens, so it is safe to retry.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LogoutRequest		true	"Logout payload"
//	@Success		200		{object}	OKResponse			"Token revoked (or was already invalid)"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed body"
//	@Failure		503		{object}	httpx.ErrorResponse	"Backing store unavailable"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	if err := h.SessionService.Logout(ctx, req.RefreshToken); err != nil {
		l.Error("logout failed", slog.Any("error", err))
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}
