package http

import (
	"errors"
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/pkg/httpx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// VerifyOTPHandler handles POST /api/auth/verify-otp.
type VerifyOTPHandler struct {
	AccountService *service.AccountService
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ServeHTTP redeems a verification code and signs the user in.
//
//	@Summary		Verify email with OTP
//	@Description	Redeems the emailed verification code. Codes are single use; success returns a session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyOTPRequest	true	"Email and code"
//	@Success		200		{object}	AuthResponse		"Email verified, session token issued"
//	@Failure		400		{object}	AuthResponse		"User not found / invalid or expired OTP"
//	@Failure		500		{object}	AuthResponse		"Internal server error"
//	@Router			/api/auth/verify-otp [post].
func (h *VerifyOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, user, err := h.AccountService.VerifyOTP(ctx, req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeFailure(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, service.ErrInvalidOTP):
			writeFailure(w, http.StatusBadRequest, "Invalid or expired OTP")
		default:
			log.Error("verify otp failed", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Email verified successfully",
		Token:   token,
		User:    toUserPayload(user),
	})
}
