package service

import (
	"context"
	"strings"
	"testing"

	"github.com/freelancehub/auth-service/internal/core/domain"
)

func TestValidatePassword(t *testing.T) {
	valid := []string{"Passw0rd", "Abcdefg1", "xY3456789"}
	for _, p := range valid {
		if err := ValidatePassword(p); err != nil {
			t.Fatalf("expected %q to pass policy: %v", p, err)
		}
	}

	invalid := []string{
		"abc",       // too short
		"Short1a",   // 7 chars
		"alllower1", // no uppercase
		"ALLUPPER1", // no lowercase
		"NoDigitsX", // no digit
	}
	for _, p := range invalid {
		if err := ValidatePassword(p); err != domain.ErrWeakPassword {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", p, err)
		}
	}
}

func TestValidatePassword_UpperBound(t *testing.T) {
	longest := "Aa1" + strings.Repeat("x", 69) // 72 chars, the bcrypt input limit
	if err := ValidatePassword(longest); err != nil {
		t.Fatalf("expected 72-char password to pass policy: %v", err)
	}

	if err := ValidatePassword(longest + "x"); err != domain.ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestPasswordHasher_RejectsOverlongBeforeHashing(t *testing.T) {
	h := NewPasswordHasher(0)

	long := "Aa1" + strings.Repeat("x", 80)
	if _, err := h.Hash(context.Background(), long); err != domain.ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(0)
	ctx := context.Background()

	digest, err := h.Hash(ctx, "Passw0rd")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if digest == "Passw0rd" {
		t.Fatalf("digest must not equal plaintext")
	}
	if !h.Verify(ctx, "Passw0rd", digest) {
		t.Fatalf("expected verification to succeed")
	}
	if h.Verify(ctx, "Passw0rd2", digest) {
		t.Fatalf("expected verification to fail for a different password")
	}
}

func TestPasswordHasher_SaltRandomization(t *testing.T) {
	h := NewPasswordHasher(0)
	ctx := context.Background()

	d1, err := h.Hash(ctx, "Passw0rd")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	d2, err := h.Hash(ctx, "Passw0rd")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if d1 == d2 {
		t.Fatalf("two hashes of the same password must differ")
	}
	if !h.Verify(ctx, "Passw0rd", d1) || !h.Verify(ctx, "Passw0rd", d2) {
		t.Fatalf("both digests must verify against the original password")
	}
}

func TestPasswordHasher_RejectsWeakBeforeHashing(t *testing.T) {
	h := NewPasswordHasher(0)

	if _, err := h.Hash(context.Background(), "abc"); err != domain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}
