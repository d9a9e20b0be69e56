package service

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kakera-app/kakera-server/internal/auth"
	domainerrors "github.com/kakera-app/kakera-server/internal/errors"
	"github.com/kakera-app/kakera-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAuthTest creates services with temporary storage for testing.
func setupAuthTest(t *testing.T, requireConfirmation bool) (*AuthService, *SessionService, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kakera-auth-test-*")
	require.NoError(t, err)

	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, nil)
	authService := NewAuthService(s, tokenService, sessionService, requireConfirmation, nil)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return authService, sessionService, cleanup
}

func TestAuthService_Signup_OpenRegistration(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, false)
	defer cleanup()

	resp, err := authService.Signup(context.Background(), SignupRequest{
		Email:       "maya@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Maya",
	})
	require.NoError(t, err)

	assert.False(t, resp.ConfirmationRequired)
	require.NotNil(t, resp.Session)
	assert.NotEmpty(t, resp.Session.AccessToken)
	assert.NotEmpty(t, resp.Session.RefreshToken)
	assert.True(t, resp.User.IsActive())
	assert.Empty(t, resp.User.ConfirmToken)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, false)
	defer cleanup()

	ctx := context.Background()
	req := SignupRequest{
		Email:       "maya@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Maya",
	}

	_, err := authService.Signup(ctx, req)
	require.NoError(t, err)

	// Same email, different case, still a conflict
	req.Email = "MAYA@example.com"
	_, err = authService.Signup(ctx, req)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, false)
	defer cleanup()

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{
			name: "missing email",
			req:  SignupRequest{Password: "correct-horse-battery", DisplayName: "Maya"},
		},
		{
			name: "bad email",
			req:  SignupRequest{Email: "nope", Password: "correct-horse-battery", DisplayName: "Maya"},
		},
		{
			name: "short password",
			req:  SignupRequest{Email: "maya@example.com", Password: "short", DisplayName: "Maya"},
		},
		{
			name: "missing display name",
			req:  SignupRequest{Email: "maya@example.com", Password: "correct-horse-battery"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Signup(context.Background(), tt.req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Signup_ConfirmationFlow(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, true)
	defer cleanup()

	ctx := context.Background()

	resp, err := authService.Signup(ctx, SignupRequest{
		Email:       "maya@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Maya",
	})
	require.NoError(t, err)

	assert.True(t, resp.ConfirmationRequired)
	assert.Nil(t, resp.Session)
	assert.NotEmpty(t, resp.ConfirmToken)
	assert.True(t, resp.User.IsUnconfirmed())

	// Login is blocked until confirmed
	_, err = authService.Login(ctx, LoginRequest{
		Email:    "maya@example.com",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotConfirmed)

	// Confirm activates the account and issues a session
	authResp, err := authService.Confirm(ctx, resp.ConfirmToken, "")
	require.NoError(t, err)
	assert.True(t, authResp.User.IsActive())
	assert.NotEmpty(t, authResp.AccessToken)

	// The token is single-use
	_, err = authService.Confirm(ctx, resp.ConfirmToken, "")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Login now works
	_, err = authService.Login(ctx, LoginRequest{
		Email:    "maya@example.com",
		Password: "correct-horse-battery",
	})
	assert.NoError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, false)
	defer cleanup()

	ctx := context.Background()

	_, err := authService.Signup(ctx, SignupRequest{
		Email:       "maya@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Maya",
	})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		resp, err := authService.Login(ctx, LoginRequest{
			Email:    "maya@example.com",
			Password: "correct-horse-battery",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := authService.Login(ctx, LoginRequest{
			Email:    "maya@example.com",
			Password: "wrong-password-entirely",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := authService.Login(ctx, LoginRequest{
			Email:    "nobody@example.com",
			Password: "correct-horse-battery",
		})
		// Same error as wrong password: existence is not leaked
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, false)
	defer cleanup()

	ctx := context.Background()

	signup, err := authService.Signup(ctx, SignupRequest{
		Email:       "maya@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Maya",
	})
	require.NoError(t, err)

	// Rotate
	refreshed, err := authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.Session.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, signup.Session.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, signup.Session.SessionID, refreshed.SessionID)

	// Old token is dead after rotation
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.Session.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	// New token still works
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: refreshed.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, false)
	defer cleanup()

	ctx := context.Background()

	signup, err := authService.Signup(ctx, SignupRequest{
		Email:       "maya@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Maya",
	})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, signup.Session.SessionID))

	// Refresh token is revoked with the session
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: signup.Session.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t, false)
	defer cleanup()

	ctx := context.Background()

	signup, err := authService.Signup(ctx, SignupRequest{
		Email:       "maya@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Maya",
	})
	require.NoError(t, err)

	user, claims, err := authService.VerifyAccessToken(ctx, signup.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, user.ID)
	assert.Equal(t, signup.User.ID, claims.UserID)
	assert.Equal(t, "maya@example.com", claims.Email)

	_, _, err = authService.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.Error(t, err)
}
