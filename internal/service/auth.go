package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/streakboard/streakboard-server/internal/auth"
	"github.com/streakboard/streakboard-server/internal/domain"
	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
)

// AuthService handles registration, login and token verification.
// Session management is delegated to SessionService.
type AuthService struct {
	users          *UserService
	sessionService *SessionService
	tokenService   *auth.TokenService
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users *UserService,
	sessionService *SessionService,
	tokenService *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:          users,
		sessionService: sessionService,
		tokenService:   tokenService,
		logger:         loggerOrDiscard(logger),
	}
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client ClientInfo) (*AuthResponse, error) {
	user, err := s.users.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Login authenticates a user and opens a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrInvalidCredentials) {
			s.logger.Info("login failed", "ip", client.IPAddress)
		}
		return nil, err
	}

	session, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "session_id", session.SessionID)
	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Refresh rotates a refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest, client ClientInfo) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	session, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, client)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Logout ends the session the refresh token belongs to. Logging out twice
// is not an error.
func (s *AuthService) Logout(ctx context.Context, req RefreshRequest) error {
	if err := validate.Validate(req); err != nil {
		return err
	}
	return s.sessionService.DeleteSessionByRefreshToken(ctx, req.RefreshToken)
}

// VerifyAccessToken validates an access token and the session it is bound to.
// Tokens of revoked sessions are rejected before they expire.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("access token expired")
		}
		return nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	if err := s.sessionService.ValidateSession(ctx, claims.UserID, claims.SessionID); err != nil {
		return nil, err
	}
	return claims, nil
}
