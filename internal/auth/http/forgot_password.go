package http

import (
	"errors"
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/pkg/httpx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// ForgotPasswordHandler handles POST /api/auth/forgot-password.
type ForgotPasswordHandler struct {
	AccountService *service.AccountService
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ServeHTTP emails a password-reset link valid for 15 minutes.
//
//	@Summary		Request a password reset
//	@Description	Emails a reset link carrying a token valid for 15 minutes. A fresh request replaces any earlier token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		forgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	AuthResponse			"Reset link sent"
//	@Failure		400		{object}	AuthResponse			"User not found"
//	@Failure		500		{object}	AuthResponse			"Internal server error"
//	@Router			/api/auth/forgot-password [post].
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AccountService.ForgotPassword(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeFailure(w, http.StatusBadRequest, "User not found")
			return
		}
		log.Error("forgot password failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Password reset link sent to your email",
	})
}
