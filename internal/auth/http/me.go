package http

import (
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/pkg/httpx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// MeHandler handles GET /api/auth/me.
type MeHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP returns the profile behind the presented session token.
//
//	@Summary		Current user profile
//	@Description	Returns the account the session token belongs to.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	AuthResponse	"Current user"
//	@Failure		401	{object}	AuthResponse	"Invalid or missing session token"
//	@Failure		500	{object}	AuthResponse	"Internal server error"
//	@Router			/api/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		writeFailure(w, http.StatusUnauthorized, "Invalid or missing session token")
		return
	}

	user, err := h.AccountService.GetUserByID(ctx, userID)
	if err != nil {
		// Token subjects always reference an existing row; a miss means the
		// account disappeared out from under a live session.
		log.Error("load current user failed", "user_id", userID, "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		User:    toUserPayload(user),
	})
}
