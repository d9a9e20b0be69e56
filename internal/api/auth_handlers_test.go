package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_OpenRegistration(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "maker@example.com",
		"password":     "TestPassword123!",
		"display_name": "Maker",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out SignupResponse
	decodeData(t, resp.Body.Bytes(), &out)

	assert.Equal(t, "maker@example.com", out.User.Email)
	assert.Equal(t, "Maker", out.User.DisplayName)
	assert.False(t, out.ConfirmationRequired)
	require.NotNil(t, out.Session)
	assert.NotEmpty(t, out.Session.AccessToken)
	assert.Equal(t, "Bearer", out.Session.TokenType)
}

func TestSignup_Validation(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "invalid email",
			body: map[string]any{"email": "nope", "password": "TestPassword123!", "display_name": "X"},
		},
		{
			name: "short password",
			body: map[string]any{"email": "a@example.com", "password": "short", "display_name": "X"},
		},
		{
			name: "missing display name",
			body: map[string]any{"email": "a@example.com", "password": "TestPassword123!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.createTestUser(t, "dup@example.com")

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "Dup@Example.com",
		"password":     "TestPassword123!",
		"display_name": "Other",
	})
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())
}

func TestConfirmationFlow(t *testing.T) {
	ts := setupTestServerWithConfirmation(t, true)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "pending@example.com",
		"password":     "TestPassword123!",
		"display_name": "Pending",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out SignupResponse
	decodeData(t, resp.Body.Bytes(), &out)
	assert.True(t, out.ConfirmationRequired)
	assert.Nil(t, out.Session)

	// Login is blocked until the account is confirmed.
	loginResp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "pending@example.com",
		"password": "TestPassword123!",
	})
	assert.Equal(t, http.StatusForbidden, loginResp.Code, loginResp.Body.String())

	// The token is delivered out of band; fetch it from the store.
	user, err := ts.store.GetUserByEmail(context.Background(), "pending@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, user.ConfirmToken)

	confirmResp := ts.api.Post("/api/v1/auth/confirm", map[string]any{
		"token": user.ConfirmToken,
	})
	require.Equal(t, http.StatusOK, confirmResp.Code, confirmResp.Body.String())

	var authOut AuthResponse
	decodeData(t, confirmResp.Body.Bytes(), &authOut)
	assert.NotEmpty(t, authOut.AccessToken)

	// The token is single-use.
	againResp := ts.api.Post("/api/v1/auth/confirm", map[string]any{
		"token": user.ConfirmToken,
	})
	assert.Equal(t, http.StatusNotFound, againResp.Code)

	// Login now works.
	loginResp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "pending@example.com",
		"password": "TestPassword123!",
	})
	assert.Equal(t, http.StatusOK, loginResp.Code, loginResp.Body.String())
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.createTestUser(t, "login@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "WrongPassword123!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Unknown accounts produce the same response as bad passwords.
	unknownResp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "ghost@example.com",
		"password": "WrongPassword123!",
	})
	assert.Equal(t, http.StatusUnauthorized, unknownResp.Code)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(unknownResp.Body.Bytes(), &b))
	assert.Equal(t, a["message"], b["message"])
}

func TestRefresh_RotatesTokens(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	loginBody := map[string]any{
		"email":    "rotate@example.com",
		"password": "TestPassword123!",
	}
	ts.createTestUser(t, "rotate@example.com")

	loginResp := ts.api.Post("/api/v1/auth/login", loginBody)
	require.Equal(t, http.StatusOK, loginResp.Code)

	var first AuthResponse
	decodeData(t, loginResp.Body.Bytes(), &first)

	refreshResp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": first.RefreshToken,
	})
	require.Equal(t, http.StatusOK, refreshResp.Code, refreshResp.Body.String())

	var second AuthResponse
	decodeData(t, refreshResp.Body.Bytes(), &second)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Old refresh token is dead after rotation.
	oldResp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": first.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, oldResp.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.createTestUser(t, "logout@example.com")

	loginResp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "logout@example.com",
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, loginResp.Code)

	var session AuthResponse
	decodeData(t, loginResp.Body.Bytes(), &session)

	logoutResp := ts.api.Post("/api/v1/auth/logout", map[string]any{
		"session_id": session.SessionID,
	})
	assert.Equal(t, http.StatusOK, logoutResp.Code)

	refreshResp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": session.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, refreshResp.Code)
}

func TestGetSession(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, userID := ts.createTestUser(t, "me@example.com")

	resp := ts.api.Get("/api/v1/auth/session", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var user UserResponse
	decodeData(t, resp.Body.Bytes(), &user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "me@example.com", user.Email)

	// Without a token the endpoint rejects.
	anonResp := ts.api.Get("/api/v1/auth/session")
	assert.Equal(t, http.StatusUnauthorized, anonResp.Code)
}
