package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signup",
		Summary:     "Register new account",
		Description: "Creates a new user account. When email confirmation is enabled the account stays unconfirmed until the confirmation token is redeemed.",
		Tags:        []string{"Authentication"},
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirm",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/confirm",
		Summary:     "Confirm account",
		Description: "Redeems a single-use confirmation token, activates the account, and issues a session",
		Tags:        []string{"Authentication"},
	}, s.handleConfirm)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the specified session",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/session",
		Summary:     "Current user",
		Description: "Returns the authenticated user for the presented access token",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSession)
}

// === DTOs ===

// SignupRequest is the request body for account registration.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email" doc:"User email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"User password"`
	DisplayName string `json:"display_name" validate:"required,max=100" doc:"Public display name"`
}

// SignupInput wraps the signup request with headers for Huma.
type SignupInput struct {
	Body          SignupRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// SignupResponse contains the result of a registration.
type SignupResponse struct {
	User                 UserResponse     `json:"user" doc:"Created user"`
	Session              *SessionResponse `json:"session,omitempty" doc:"Issued session when no confirmation is required"`
	ConfirmationRequired bool             `json:"confirmation_required" doc:"Whether the account must be confirmed before login"`
}

// SignupOutput wraps the signup response for Huma.
type SignupOutput struct {
	Body SignupResponse
}

// ConfirmRequest is the request body for account confirmation.
type ConfirmRequest struct {
	Token string `json:"token" validate:"required,max=100" doc:"Single-use confirmation token"`
}

// ConfirmInput wraps the confirm request with headers for Huma.
type ConfirmInput struct {
	Body          ConfirmRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" doc:"User email"`
	Password string `json:"password" validate:"required,max=1024" doc:"User password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body          RefreshRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	SessionID string `json:"session_id" validate:"required,max=100" doc:"Session ID to revoke"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body LogoutRequest
}

// SessionInput carries the bearer token for the current-user endpoint.
type SessionInput struct {
	Authorization string `header:"Authorization"`
}

// UserResponse contains user information in auth responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"User email"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	LastLoginAt time.Time `json:"last_login_at" doc:"Last login timestamp"`
}

// SessionResponse contains issued tokens.
type SessionResponse struct {
	AccessToken  string `json:"access_token" doc:"PASETO access token"`
	RefreshToken string `json:"refresh_token" doc:"Refresh token"`
	SessionID    string `json:"session_id" doc:"Session identifier"`
	TokenType    string `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int    `json:"expires_in" doc:"Token expiry in seconds"`
}

// AuthResponse contains authentication tokens and user info.
type AuthResponse struct {
	SessionResponse
	User UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// UserOutput wraps a single user for Huma.
type UserOutput struct {
	Body UserResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
	ip := getClientIP(input.XForwardedFor, input.XRealIP)
	if err := s.allowAuthAttempt(ip, "/api/v1/auth/signup"); err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
		IPAddress:   ip,
	})
	if err != nil {
		return nil, err
	}

	out := SignupResponse{
		User:                 mapUserResponse(resp.User),
		ConfirmationRequired: resp.ConfirmationRequired,
	}
	if resp.Session != nil {
		out.Session = &SessionResponse{
			AccessToken:  resp.Session.AccessToken,
			RefreshToken: resp.Session.RefreshToken,
			SessionID:    resp.Session.SessionID,
			TokenType:    resp.Session.TokenType,
			ExpiresIn:    resp.Session.ExpiresIn,
		}
	}

	return &SignupOutput{Body: out}, nil
}

func (s *Server) handleConfirm(ctx context.Context, input *ConfirmInput) (*AuthOutput, error) {
	ip := getClientIP(input.XForwardedFor, input.XRealIP)
	if err := s.allowAuthAttempt(ip, "/api/v1/auth/confirm"); err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Confirm(ctx, input.Body.Token, ip)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	ip := getClientIP(input.XForwardedFor, input.XRealIP)
	if err := s.allowAuthAttempt(ip, "/api/v1/auth/login"); err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		IPAddress: ip,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		IPAddress:    getClientIP(input.XForwardedFor, input.XRealIP),
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.SessionID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

func (s *Server) handleGetSession(ctx context.Context, _ *SessionInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, huma.Error401Unauthorized("User not found")
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		SessionResponse: SessionResponse{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			SessionID:    resp.SessionID,
			TokenType:    resp.TokenType,
			ExpiresIn:    resp.ExpiresIn,
		},
		User: mapUserResponse(resp.User),
	}
}

func mapUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
