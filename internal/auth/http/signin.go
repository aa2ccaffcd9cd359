package http

import (
	"errors"
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/pkg/httpx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// SigninHandler handles POST /api/auth/signin.
type SigninHandler struct {
	AccountService *service.AccountService
}

type signinRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// ServeHTTP authenticates a user and issues a session token. Unknown emails
// and wrong passwords share one message so the endpoint cannot be used to
// probe which addresses are registered.
//
//	@Summary		Sign in
//	@Description	Authenticates email and password and returns a session token. rememberMe stretches the session from 1 hour to 7 days.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signinRequest	true	"Email, password and rememberMe"
//	@Success		200		{object}	AuthResponse	"Session token issued"
//	@Failure		400		{object}	AuthResponse	"Invalid credentials / email not verified"
//	@Failure		500		{object}	AuthResponse	"Internal server error"
//	@Router			/api/auth/signin [post].
func (h *SigninHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signinRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, user, err := h.AccountService.SignIn(ctx, req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeFailure(w, http.StatusBadRequest, "Invalid credentials")
		case errors.Is(err, service.ErrEmailNotVerified):
			writeFailure(w, http.StatusBadRequest, "Email not verified. Please verify your email first.")
		default:
			log.Error("signin failed", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signin successful",
		Token:   token,
		User:    toUserPayload(user),
	})
}
