package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	resetTokenBytes  = 20 // 160 bits, hex-encoded to 40 characters
	defaultResetTTL  = 10 * time.Minute
	defaultVerifyTTL = 24 * time.Hour
)

// IssuedToken is the result of minting an out-of-band token. Plaintext is
// handed to the caller exactly once; only Hash and ExpiresAt are persisted.
type IssuedToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenManager mints single-use tokens for password reset and email
// verification. Tokens are random, fixed-width hex strings; at rest only
// their SHA-256 digest is kept. The digest is deliberately unsalted: it has
// to be looked up by equality.
type ResetTokenManager struct {
	resetTTL  time.Duration
	verifyTTL time.Duration
}

// NewResetTokenManager builds a manager. Non-positive TTLs fall back to
// 10 minutes (reset) and 24 hours (verification).
func NewResetTokenManager(resetTTL, verifyTTL time.Duration) *ResetTokenManager {
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	if verifyTTL <= 0 {
		verifyTTL = defaultVerifyTTL
	}
	return &ResetTokenManager{resetTTL: resetTTL, verifyTTL: verifyTTL}
}

// IssuePasswordReset mints a password-reset token.
func (m *ResetTokenManager) IssuePasswordReset() (*IssuedToken, error) {
	return issue(m.resetTTL)
}

// IssueEmailVerification mints an email-verification token.
func (m *ResetTokenManager) IssueEmailVerification() (*IssuedToken, error) {
	return issue(m.verifyTTL)
}

func issue(ttl time.Duration) (*IssuedToken, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("token entropy: %w", err)
	}
	plaintext := hex.EncodeToString(raw)
	return &IssuedToken{
		Plaintext: plaintext,
		Hash:      HashToken(plaintext),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

// HashToken maps a plaintext token to its at-rest form. Resolution recomputes
// this over the candidate and looks the digest up by equality.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
