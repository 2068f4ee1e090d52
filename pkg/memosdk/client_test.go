package memosdk

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignIn(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.UserLogin)
		require.Equal(t, "secret1", req.UserPass)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "123456", req.UserTOTP)
		require.NotNil(t, req.Exp)
		require.Equal(t, int64(1700000000), *req.Exp)
		_ = json.NewEncoder(w).Encode(TokenResponse{UserToken: "tok"})
	})
	mux.HandleFunc("GET /v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "7", r.PathValue("id"))
		_ = json.NewEncoder(w).Encode(UserResponse{ID: 7, UserLogin: "alice"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewSDKClient(srv.URL + "/")
	exp := time.Unix(1700000000, 0)

	session, err := client.SignIn(t.Context(), "alice", "secret1", "123456", &exp)
	require.NoError(t, err)
	require.Equal(t, "tok", session.Token())

	user, err := session.GetUser(t.Context(), 7)
	require.NoError(t, err)
	require.Equal(t, "alice", user.UserLogin)
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","user_login"],"type":"attempts_suspended","msg":"Attempts are temporarily suspended"}]}`))
	}))
	defer srv.Close()

	err := NewSDKClient(srv.URL).Login(t.Context(), "alice", "nope")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.True(t, apiErr.HasType(TypeAttemptsSuspended))
	require.Equal(t, TypeAttemptsSuspended, apiErr.Type())
	require.Equal(t, []string{"body", "user_login"}, apiErr.Detail[0].Loc)
	require.Contains(t, apiErr.Error(), "attempts_suspended at body.user_login")
}

func TestAPIError_NonJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewSDKClient(srv.URL).GetLiveness(t.Context())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Empty(t, apiErr.Detail)
	require.Equal(t, "", apiErr.Type())
}
