package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hostcodes/quizwiz/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func authedHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, wantUserID, UserIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthnMiddleware_ValidToken(t *testing.T) {
	signer := jwtx.NewHS256([]byte("secret"), "quizwiz-auth")
	token, err := signer.Sign("user-1", time.Minute)
	require.NoError(t, err)

	handler := Chain(authedHandler(t, "user-1"), AuthnMiddleware(signer))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthnMiddleware_Rejections(t *testing.T) {
	signer := jwtx.NewHS256([]byte("secret"), "quizwiz-auth")
	token, err := signer.Sign("user-1", time.Minute)
	require.NoError(t, err)

	notReached := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for rejected requests")
	})
	handler := Chain(notReached, AuthnMiddleware(signer))

	tests := []struct {
		name  string
		authz string
	}{
		{name: "missing header", authz: ""},
		{name: "not a bearer scheme", authz: "Basic abc"},
		{name: "tampered token", authz: "Bearer " + token + "x"},
		{name: "garbage token", authz: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.authz != "" {
				req.Header.Set("Authorization", tt.authz)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

			// The 401 speaks the same uniform body as every other failure.
			require.Contains(t, rec.Body.String(), `"success":false`)
			require.Contains(t, rec.Body.String(), `"message":"Invalid or missing session token"`)
		})
	}
}
