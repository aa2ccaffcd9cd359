package http

import (
	"encoding/json"
	"net/http"

	"github.com/hostcodes/quizwiz/internal/auth/domain"
	"github.com/hostcodes/quizwiz/pkg/httpx"
)

// UserPayload is the public projection of an account. The password hash and
// any pending challenges never leave the service.
type UserPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is the uniform response body every endpoint speaks:
// {success, message} always, plus token/user/userId where the operation
// produces them.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *UserPayload `json:"user,omitempty"`
	UserID  string       `json:"userId,omitempty"`
}

func toUserPayload(u domain.User) *UserPayload {
	return &UserPayload{ID: u.ID, Name: u.Name, Email: u.Email}
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	httpx.WriteJSON(w, status, AuthResponse{Success: false, Message: message})
}

func writeServerError(w http.ResponseWriter) {
	writeFailure(w, http.StatusInternalServerError, "Server error")
}

// decodeBody parses the JSON request body into dst. On failure it writes the
// 400 response itself and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
