package http

import (
	"errors"
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/pkg/httpx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// SignupHandler handles POST /api/auth/signup.
type SignupHandler struct {
	AccountService *service.AccountService
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP registers a new account and emails it a verification code.
//
//	@Summary		Register a new account
//	@Description	Creates an unverified account and emails a 6-digit verification code valid for 15 minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupRequest	true	"Name, email and password"
//	@Success		200		{object}	AuthResponse	"Account created, OTP sent"
//	@Failure		400		{object}	AuthResponse	"User already exists / invalid body"
//	@Failure		500		{object}	AuthResponse	"Internal server error"
//	@Router			/api/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	userID, err := h.AccountService.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			writeFailure(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Error("signup failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signup successful. Please verify your email with the OTP sent.",
		UserID:  userID,
	})
}
