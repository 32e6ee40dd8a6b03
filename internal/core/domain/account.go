package domain

import (
	"regexp"
	"time"
)

// Roles form a closed set; Register rejects anything else.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// ValidRole reports whether role is one of the registerable roles.
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleFreelancer
}

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ValidEmail reports whether addr looks like a deliverable address.
func ValidEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

// AccountState is the authentication-relevant state of an account.
type AccountState string

const (
	StateActive              AccountState = "active"
	StateLocked              AccountState = "locked"
	StateInactive            AccountState = "inactive"
	StatePendingVerification AccountState = "pending_verification"
)

// Account is the core identity aggregate.
//
// PasswordHash and the token fields are secrets at rest: they carry `json:"-"`
// so no projection ever serializes them. Version backs optimistic concurrency
// on every mutation.
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`

	IsEmailVerified         bool      `json:"is_email_verified"`
	EmailVerificationToken  string    `json:"-"`
	EmailVerificationExpire time.Time `json:"-"`

	ResetPasswordToken  string    `json:"-"`
	ResetPasswordExpire time.Time `json:"-"`

	IsActive      bool      `json:"is_active"`
	LastActiveAt  time.Time `json:"last_active_at,omitempty"`
	LoginAttempts int       `json:"-"`
	LockUntil     time.Time `json:"-"`

	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State derives the account state at a given instant. Lock expiry is lazy:
// a past LockUntil simply stops mattering, nothing sweeps it.
func (a *Account) State(now time.Time) AccountState {
	switch {
	case !a.IsActive:
		return StateInactive
	case a.LockUntil.After(now):
		return StateLocked
	case !a.IsEmailVerified:
		return StatePendingVerification
	default:
		return StateActive
	}
}

// CanAuthenticate reports whether a credential check may proceed.
// Pending email verification does not gate login.
func (a *Account) CanAuthenticate(now time.Time) bool {
	s := a.State(now)
	return s != StateInactive && s != StateLocked
}

// RecordFailedLogin increments the consecutive-failure counter and locks the
// account once maxAttempts failures accumulate.
func (a *Account) RecordFailedLogin(now time.Time, maxAttempts int, lockout time.Duration) {
	a.LoginAttempts++
	if a.LoginAttempts >= maxAttempts {
		a.LockUntil = now.Add(lockout)
	}
}

// RecordSuccessfulLogin resets the failure counter, clears any lock and stamps
// the last-active time.
func (a *Account) RecordSuccessfulLogin(now time.Time) {
	a.LoginAttempts = 0
	a.LockUntil = time.Time{}
	a.LastActiveAt = now
}

// Profile is the public read projection of an account. It is the only shape
// handed back to callers; secrets never appear in it.
type Profile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"is_email_verified"`
}

// Public returns the caller-safe projection of the account.
func (a *Account) Public() Profile {
	return Profile{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Role:            a.Role,
		IsEmailVerified: a.IsEmailVerified,
	}
}
