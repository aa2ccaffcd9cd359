package http

import (
	"errors"
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/pkg/httpx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// ResetPasswordHandler handles POST /api/auth/reset-password.
type ResetPasswordHandler struct {
	AccountService *service.AccountService
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ServeHTTP consumes an emailed reset token and sets a new password.
//
//	@Summary		Reset password with an emailed token
//	@Description	Verifies the reset token from the emailed link and replaces the password. Tokens are single use.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		resetPasswordRequest	true	"Reset token and new password"
//	@Success		200		{object}	AuthResponse			"Password reset"
//	@Failure		400		{object}	AuthResponse			"Invalid or expired reset token"
//	@Failure		500		{object}	AuthResponse			"Internal server error"
//	@Router			/api/auth/reset-password [post].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		writeFailure(w, http.StatusBadRequest, "New password is required")
		return
	}

	if err := h.AccountService.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			writeFailure(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		log.Error("reset password failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Password reset successful",
	})
}
