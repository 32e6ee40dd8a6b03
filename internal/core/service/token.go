package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/freelancehub/auth-service/internal/core/domain"
)

const defaultSessionTTL = 24 * time.Hour

// SessionClaims are the verified claims of a session token. Role is trusted
// as of mint time; a role change is only reflected after a re-mint.
type SessionClaims struct {
	AccountID string
	Role      string
}

// TokenMinter issues and verifies HS256-signed session tokens. The signing
// secret is injected once at construction and never logged.
type TokenMinter struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenMinter builds a minter with the given shared secret and token
// lifetime. ttl <= 0 falls back to 24 hours.
func NewTokenMinter(secret string, ttl time.Duration) *TokenMinter {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &TokenMinter{secret: []byte(secret), ttl: ttl}
}

// Mint signs a token binding the account identity and role to an absolute
// expiry.
func (m *TokenMinter) Mint(accountID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  accountID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify parses and checks the token. It is pure: no store lookups, no side
// effects. Expired tokens yield domain.ErrTokenExpired; every other defect
// (bad signature, wrong algorithm, malformed claims) yields
// domain.ErrTokenInvalid.
func (m *TokenMinter) Verify(token string) (*SessionClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !domain.ValidRole(role) {
		return nil, domain.ErrTokenInvalid
	}
	return &SessionClaims{AccountID: sub, Role: role}, nil
}
