package service

import (
	"context"
	"strings"
	"time"

	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/middleware/auth"
	"movietracker/internal/shared"
)

// dummyHash keeps a wrong-email login as slow as a wrong-password one.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

// localAdminSubject is the token subject for the local admin login.
const localAdminSubject = "local:admin"

type AuthService interface {
	// Login exchanges the admin credentials for an access token.
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	// Me describes the caller attached to ctx.
	Me(ctx context.Context) (*dto.MeResponse, error)
}

type authService struct {
	gate         *auth.Gate
	issuer       *auth.TokenIssuer
	adminEmail   string
	passwordHash string
}

// NewAuthService wires the local admin login. A nil issuer or an empty hash
// disables login; Me keeps working for externally issued tokens.
func NewAuthService(gate *auth.Gate, issuer *auth.TokenIssuer, adminEmail, passwordHash string) AuthService {
	return &authService{
		gate:         gate,
		issuer:       issuer,
		adminEmail:   strings.TrimSpace(adminEmail),
		passwordHash: passwordHash,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	if s.issuer == nil || s.passwordHash == "" || s.adminEmail == "" {
		return nil, ErrLoginDisabled
	}

	if !strings.EqualFold(strings.TrimSpace(email), s.adminEmail) {
		// same cost as a real compare
		_ = auth.VerifyPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(s.passwordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(shared.Identity{UserID: localAdminSubject, Email: s.adminEmail})
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Round(time.Second).Seconds()),
	}, nil
}

func (s *authService) Me(ctx context.Context) (*dto.MeResponse, error) {
	id, err := s.gate.RequireSignedIn(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{UserID: id.UserID, Email: id.Email, IsAdmin: s.gate.IsAdmin(id)}, nil
}
