package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/springmeet/springmeet/internal/api/service"
	"github.com/springmeet/springmeet/pkg/httpx"
	"github.com/springmeet/springmeet/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

type BootstrapRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// ServeHTTP creates the first admin account.
//
//	@Summary		Bootstrap the admin account
//	@Description	One-time setup endpoint gated by a pre-shared key. Refuses once any admin exists.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Key	header		string				true	"Pre-shared bootstrap key"
//	@Param			request			body		BootstrapRequest	true	"Admin account payload"
//	@Success		201				{object}	UserResponse		"Admin account created"
//	@Failure		400				{object}	httpx.ErrorResponse	"Malformed body or invalid fields"
//	@Failure		403				{object}	httpx.ErrorResponse	"Bootstrap disabled or wrong key"
//	@Failure		409				{object}	httpx.ErrorResponse	"Admin already exists"
//	@Failure		503				{object}	httpx.ErrorResponse	"Backing store unavailable"
//	@Router			/v1/auth/bootstrap-admin [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	var req BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	key := r.Header.Get("X-Bootstrap-Key")
	user, err := h.BootstrapService.CreateAdmin(ctx, key, req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapDisabled), errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteError(w, http.StatusForbidden, "Forbidden")
		case errors.Is(err, service.ErrAdminExists):
			httpx.WriteError(w, http.StatusConflict, "Admin already exists")
		default:
			if !service.IsClientError(err) {
				l.Error("bootstrap failed", slog.Any("error", err))
			}
			writeServiceError(w, err)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, newUserResponse(user))
}
