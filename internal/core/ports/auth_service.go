package ports

import (
	"context"

	"github.com/freelancehub/auth-service/internal/core/domain"
)

// RegisterInput carries everything needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Credentials is a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	Token   string
	Account domain.Profile
}

// AuthService exposes the credential and token lifecycle to the transport layer.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	CurrentAccount(ctx context.Context, sessionToken string) (*domain.Profile, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) (*AuthResult, error)
	VerifyEmail(ctx context.Context, verificationToken string) (*domain.Profile, error)
}
