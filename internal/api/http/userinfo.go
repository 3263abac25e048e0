package http

import (
	"net/http"

	"github.com/springmeet/springmeet/internal/api/service"
	"github.com/springmeet/springmeet/pkg/httpx"
)

type UserInfoHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP returns the authenticated user's profile.
//
//	@Summary		Get the current user
//	@Description	Resolves the bearer access token to its account.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserResponse		"Authenticated user"
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid, or expired access token"
//	@Failure		503	{object}	httpx.ErrorResponse	"Backing store unavailable"
//	@Router			/v1/auth/me [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.SessionService.Authenticate(ctx, httpx.BearerToken(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user))
}
