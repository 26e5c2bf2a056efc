package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pskladal/staff-shifts-api/internal/dto"
)

func TestAuthLoginAndMe(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Jana", "jana@example.com", "worker")

	cookies := env.login(t, "jana@example.com")

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		User dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "jana@example.com", response.User.Email)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Jana", "jana@example.com", "worker")

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jana@example.com",
		"password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthLoginResponseHidesPasswordHash(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Jana", "jana@example.com", "worker")

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jana@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "passwordHash")
	require.NotContains(t, w.Body.String(), "$2a$")
}

func TestAuthMeRequiresSession(t *testing.T) {
	env := setupAPITestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthLogoutEndsSession(t *testing.T) {
	env := setupAPITestEnv(t)
	env.createUser(t, "Jana", "jana@example.com", "worker")
	cookies := env.login(t, "jana@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// the cleared cookie no longer authenticates
	cleared := w.Result().Cookies()
	w = env.do(t, http.MethodGet, "/api/auth/me", nil, cleared)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeactivatedUserSessionStopsResolving(t *testing.T) {
	env := setupAPITestEnv(t)
	user := env.createUser(t, "Jana", "jana@example.com", "worker")
	cookies := env.login(t, "jana@example.com")

	_, err := env.usersService.SetActive(context.Background(), user.ID, false)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
