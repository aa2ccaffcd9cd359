package http

import (
	"errors"
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/pkg/httpx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// ChangePasswordHandler handles POST /api/auth/change-password.
type ChangePasswordHandler struct {
	AccountService *service.AccountService
}

type changePasswordRequest struct {
	UserID          string `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ServeHTTP replaces a user's password after re-checking the current one.
// The current-password check is what authorizes the change.
//
//	@Summary		Change password
//	@Description	Replaces the password after verifying the current one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		changePasswordRequest	true	"User id, current and new password"
//	@Success		200		{object}	AuthResponse			"Password changed"
//	@Failure		400		{object}	AuthResponse			"User not found / current password is incorrect"
//	@Failure		500		{object}	AuthResponse			"Internal server error"
//	@Router			/api/auth/change-password [post].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		writeFailure(w, http.StatusBadRequest, "New password is required")
		return
	}

	err := h.AccountService.ChangePassword(ctx, req.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeFailure(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, service.ErrWrongPassword):
			writeFailure(w, http.StatusBadRequest, "Current password is incorrect")
		default:
			log.Error("change password failed", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}
