package service

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/freelancehub/auth-service/internal/core/domain"
)

const (
	bcryptCost = 10

	// bcrypt silently works on at most 72 bytes of input; anything longer is
	// rejected up front so the limit surfaces as a validation error.
	maxPasswordLength = 72
)

// PasswordHasher wraps bcrypt with the account password policy and a
// concurrency bound, so a burst of logins cannot pin every core on hashing.
type PasswordHasher struct {
	sem *semaphore.Weighted
}

// NewPasswordHasher builds a hasher allowing at most maxConcurrent hashes in
// flight. maxConcurrent <= 0 defaults to GOMAXPROCS.
func NewPasswordHasher(maxConcurrent int64) *PasswordHasher {
	if maxConcurrent <= 0 {
		maxConcurrent = int64(runtime.GOMAXPROCS(0))
	}
	return &PasswordHasher{sem: semaphore.NewWeighted(maxConcurrent)}
}

// ValidatePassword enforces the account password policy: 8 to 72 characters
// including one uppercase letter, one lowercase letter and one digit.
func ValidatePassword(plaintext string) error {
	if len(plaintext) < 8 {
		return domain.ErrWeakPassword
	}
	if len(plaintext) > maxPasswordLength {
		return domain.ErrPasswordTooLong
	}
	var upper, lower, digit bool
	for _, r := range plaintext {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return domain.ErrWeakPassword
	}
	return nil
}

// Hash validates the policy and returns a salted bcrypt digest. Two calls on
// the same plaintext produce different digests.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ValidatePassword(plaintext); err != nil {
		return "", err
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. bcrypt's comparison is
// constant-time over the derived key.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
