package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/auth-service/internal/api/metrics"
	"github.com/freelancehub/auth-service/internal/core/domain"
	"github.com/freelancehub/auth-service/internal/core/ports"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockoutDuration  = 15 * time.Minute

	// Bounded retries for optimistic-concurrency conflicts before giving up.
	maxConflictRetries = 3
)

// dummyHash is a valid bcrypt digest of a throwaway value. Login verifies
// against it when no account matches the email so the unknown-email path
// costs roughly the same as a wrong-password one.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthPolicy tunes the orchestrator. Zero values fall back to defaults.
type AuthPolicy struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	// ResetURLBase and VerifyURLBase prefix the token in outbound mail,
	// e.g. "https://app.freelancehub.io/reset-password".
	ResetURLBase  string
	VerifyURLBase string
}

// AuthService composes the hasher, token minter, reset-token manager and
// account store into the register/login/reset operations.
type AuthService struct {
	repo     ports.AccountRepository
	hasher   *PasswordHasher
	tokens   *TokenMinter
	reset    *ResetTokenManager
	mailer   ports.Mailer
	dispatch ports.MailDispatcher
	throttle ports.ResetThrottle
	logger   zerolog.Logger
	policy   AuthPolicy
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher *PasswordHasher,
	tokens *TokenMinter,
	reset *ResetTokenManager,
	mailer ports.Mailer,
	dispatch ports.MailDispatcher,
	throttle ports.ResetThrottle,
	logger zerolog.Logger,
	policy AuthPolicy,
) *AuthService {
	if policy.MaxLoginAttempts <= 0 {
		policy.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if policy.LockoutDuration <= 0 {
		policy.LockoutDuration = defaultLockoutDuration
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		reset:    reset,
		mailer:   mailer,
		dispatch: dispatch,
		throttle: throttle,
		logger:   logger,
		policy:   policy,
	}
}

// Register creates an account, issues an email-verification token and returns
// a fresh session. The verification mail goes out asynchronously; a delivery
// problem never fails registration.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	if name == "" || email == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	if !domain.ValidRole(input.Role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	verification, err := s.reset.IssueEmailVerification()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Name:                    name,
		Email:                   email,
		PasswordHash:            hash,
		Role:                    input.Role,
		IsActive:                true,
		EmailVerificationToken:  verification.Hash,
		EmailVerificationExpire: verification.ExpiresAt,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.dispatch.Enqueue(ports.Message{
		To:      created.Email,
		Subject: "Verify your FreelanceHub account",
		Body:    fmt.Sprintf("Welcome to FreelanceHub! Verify your email: %s/%s", s.policy.VerifyURLBase, verification.Plaintext),
	})
	metrics.MailEnqueuedTotal.Inc()
	metrics.RegistrationsTotal.WithLabelValues(created.Role).Inc()

	token, err := s.tokens.Mint(created.ID, created.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", created.ID).Str("role", created.Role).Msg("account registered")
	return &ports.AuthResult{Token: token, Account: created.Public()}, nil
}

// Login verifies credentials and establishes a session. Unknown email, wrong
// password, locked and inactive accounts all return ErrInvalidCredentials;
// the real cause is only logged. Counter mutations go through conditional
// updates and are retried on version conflicts.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, domain.ErrMissingFields
	}

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		account, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				// Equalize timing with the wrong-password path.
				s.hasher.Verify(ctx, creds.Password, dummyHash)
				metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
				return nil, domain.ErrInvalidCredentials
			}
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		now := time.Now().UTC()
		if !account.CanAuthenticate(now) {
			s.hasher.Verify(ctx, creds.Password, dummyHash)
			s.logger.Warn().Str("account_id", account.ID).Str("state", string(account.State(now))).Msg("login refused")
			metrics.LoginsTotal.WithLabelValues("locked").Inc()
			return nil, domain.ErrInvalidCredentials
		}

		if !s.hasher.Verify(ctx, creds.Password, account.PasswordHash) {
			wasLocked := account.State(now) == domain.StateLocked
			account.RecordFailedLogin(now, s.policy.MaxLoginAttempts, s.policy.LockoutDuration)
			if err := s.repo.Update(ctx, account); err != nil {
				if errors.Is(err, domain.ErrVersionConflict) {
					continue
				}
				return nil, err
			}
			if !wasLocked && account.LockUntil.After(now) {
				s.logger.Warn().Str("account_id", account.ID).Time("lock_until", account.LockUntil).Msg("account locked after repeated failures")
				metrics.LockoutsTotal.Inc()
			}
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}

		account.RecordSuccessfulLogin(now)
		if err := s.repo.Update(ctx, account); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		token, err := s.tokens.Mint(account.ID, account.Role)
		if err != nil {
			return nil, err
		}

		metrics.LoginsTotal.WithLabelValues("success").Inc()
		return &ports.AuthResult{Token: token, Account: account.Public()}, nil
	}

	metrics.LoginsTotal.WithLabelValues("conflict").Inc()
	return nil, domain.ErrStorageConflict
}

// CurrentAccount resolves a session token to the public projection of its
// account.
func (s *AuthService) CurrentAccount(ctx context.Context, sessionToken string) (*domain.Profile, error) {
	claims, err := s.tokens.Verify(sessionToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	account, err := s.repo.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	profile := account.Public()
	return &profile, nil
}

// ForgotPassword issues a reset token and mails it. An unknown address and a
// throttled one both return nil so callers cannot probe for registered
// emails; an actual delivery failure does surface, wrapped in
// ErrDeliveryFailure. Persisting the token goes through a conditional update
// and is retried on version conflicts, like every other account mutation.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingFields
	}

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		// A broken throttle must not take the reset flow down with it.
		s.logger.Error().Err(err).Msg("reset throttle unavailable")
	} else if !allowed {
		s.logger.Warn().Str("email", email).Msg("password reset throttled")
		metrics.PasswordResetsTotal.WithLabelValues("throttled").Inc()
		return nil
	}

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		account, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				s.logger.Debug().Str("email", email).Msg("password reset for unknown address")
				return nil
			}
			return err
		}

		issued, err := s.reset.IssuePasswordReset()
		if err != nil {
			return err
		}

		account.ResetPasswordToken = issued.Hash
		account.ResetPasswordExpire = issued.ExpiresAt
		if err := s.repo.Update(ctx, account); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				continue
			}
			return err
		}

		start := time.Now()
		err = s.mailer.Send(ctx, ports.Message{
			To:      account.Email,
			Subject: "Password Reset",
			Body:    fmt.Sprintf("Click to reset: %s/%s", s.policy.ResetURLBase, issued.Plaintext),
		})
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.MailDeliveryDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		if err != nil {
			s.logger.Error().Err(err).Str("account_id", account.ID).Msg("reset mail delivery failed")
			return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
		}

		metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
		return nil
	}

	return domain.ErrStorageConflict
}

// ResetPassword consumes a reset token and replaces the password. The token
// fields are cleared in the same conditional update that writes the new hash,
// which is what makes the token single-use.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) (*ports.AuthResult, error) {
	account, err := s.repo.FindByResetToken(ctx, HashToken(resetToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account.PasswordHash = hash
	account.ResetPasswordToken = ""
	account.ResetPasswordExpire = time.Time{}
	// A proven mailbox owner gets a clean slate on lockout counters.
	account.RecordSuccessfulLogin(now)

	if err := s.repo.Update(ctx, account); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			// Concurrent consumption of the same token; treat as spent.
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	token, err := s.tokens.Mint(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).Msg("password reset completed")
	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return &ports.AuthResult{Token: token, Account: account.Public()}, nil
}

// VerifyEmail consumes an email-verification token and flips the verified
// flag.
func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) (*domain.Profile, error) {
	account, err := s.repo.FindByVerificationToken(ctx, HashToken(verificationToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	account.IsEmailVerified = true
	account.EmailVerificationToken = ""
	account.EmailVerificationExpire = time.Time{}
	if err := s.repo.Update(ctx, account); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).Msg("email verified")
	profile := account.Public()
	return &profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
