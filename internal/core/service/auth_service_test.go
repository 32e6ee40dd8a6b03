package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/auth-service/internal/core/domain"
	"github.com/freelancehub/auth-service/internal/core/ports"
)

// --- stubs ---

type stubAccountRepo struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*domain.Account
	// conflicts makes the next N Update calls fail with ErrVersionConflict.
	conflicts int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	r.seq++
	stored := cloneAccount(account)
	stored.ID = fmt.Sprintf("acc%d", r.seq)
	stored.Version = 1
	r.accounts[stored.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByResetToken(_ context.Context, hashedToken string, now time.Time) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.ResetPasswordToken == hashedToken && a.ResetPasswordExpire.After(now) {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByVerificationToken(_ context.Context, hashedToken string, now time.Time) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.EmailVerificationToken == hashedToken && a.EmailVerificationExpire.After(now) {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts > 0 {
		r.conflicts--
		return domain.ErrVersionConflict
	}

	stored, ok := r.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if stored.Version != account.Version {
		return domain.ErrVersionConflict
	}

	updated := cloneAccount(account)
	updated.Version++
	r.accounts[updated.ID] = updated
	account.Version++
	return nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []ports.Message
	fail error
}

func (m *stubMailer) Send(_ context.Context, msg ports.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

type stubDispatcher struct {
	mu       sync.Mutex
	enqueued []ports.Message
}

func (d *stubDispatcher) Enqueue(msg ports.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, msg)
}

type stubThrottle struct {
	allowed bool
	err     error
	calls   int
}

func (t *stubThrottle) Allow(_ context.Context, _ string) (bool, error) {
	t.calls++
	return t.allowed, t.err
}

type authFixture struct {
	svc      *AuthService
	repo     *stubAccountRepo
	mailer   *stubMailer
	dispatch *stubDispatcher
	throttle *stubThrottle
	minter   *TokenMinter
}

func newAuthFixture(policy AuthPolicy, resetTTL time.Duration) *authFixture {
	repo := newStubAccountRepo()
	mailer := &stubMailer{}
	dispatch := &stubDispatcher{}
	throttle := &stubThrottle{allowed: true}
	minter := NewTokenMinter("test-secret", time.Hour)

	svc := NewAuthService(
		repo,
		NewPasswordHasher(0),
		minter,
		NewResetTokenManager(resetTTL, 24*time.Hour),
		mailer,
		dispatch,
		throttle,
		zerolog.Nop(),
		policy,
	)
	return &authFixture{svc: svc, repo: repo, mailer: mailer, dispatch: dispatch, throttle: throttle, minter: minter}
}

// tokenFromMail extracts the trailing path segment of a mailed link.
func tokenFromMail(t *testing.T, body string) string {
	t.Helper()
	i := strings.LastIndex(body, "/")
	if i < 0 || i == len(body)-1 {
		t.Fatalf("no token in mail body: %q", body)
	}
	return body[i+1:]
}

// --- Register ---

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)

	result, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "Passw0rd",
		Role:     domain.RoleClient,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims, err := f.minter.Verify(result.Token)
	if err != nil {
		t.Fatalf("session token invalid: %v", err)
	}
	if claims.Role != domain.RoleClient {
		t.Fatalf("unexpected role claim: %s", claims.Role)
	}
	if result.Account.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", result.Account.Email)
	}

	stored, err := f.repo.FindByID(context.Background(), result.Account.ID)
	if err != nil {
		t.Fatalf("account not persisted: %v", err)
	}
	if stored.PasswordHash == "Passw0rd" || stored.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if stored.IsEmailVerified {
		t.Fatalf("new accounts start unverified")
	}

	// Verification mail goes out asynchronously with the plaintext token;
	// only its hash is persisted.
	if len(f.dispatch.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued mail, got %d", len(f.dispatch.enqueued))
	}
	plaintext := tokenFromMail(t, f.dispatch.enqueued[0].Body)
	if HashToken(plaintext) != stored.EmailVerificationToken {
		t.Fatalf("stored verification token is not the hash of the mailed one")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	cases := []struct {
		name  string
		input ports.RegisterInput
		want  error
	}{
		{"missing name", ports.RegisterInput{Email: "a@x.com", Password: "Passw0rd", Role: "client"}, domain.ErrMissingFields},
		{"bad email", ports.RegisterInput{Name: "A", Email: "not-an-email", Password: "Passw0rd", Role: "client"}, domain.ErrInvalidEmail},
		{"admin role", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "admin"}, domain.ErrInvalidRole},
		{"weak password", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "abc", Role: "client"}, domain.ErrWeakPassword},
	}
	for _, tc := range cases {
		if _, err := f.svc.Register(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	input := ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}
	if _, err := f.svc.Register(ctx, input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := f.svc.Register(ctx, input); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

// --- Login ---

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "freelancer"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "Passw0rd"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Account.Role != domain.RoleFreelancer {
		t.Fatalf("unexpected role: %s", result.Account.Role)
	}
	if _, err := f.minter.Verify(result.Token); err != nil {
		t.Fatalf("session token invalid: %v", err)
	}
}

func TestAuthService_Login_UnknownEmailIsGeneric(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)

	_, err := f.svc.Login(context.Background(), ports.Credentials{Email: "ghost@x.com", Password: "Passw0rd"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_InactiveIsGeneric(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	f.repo.mu.Lock()
	f.repo.accounts[reg.Account.ID].IsActive = false
	f.repo.mu.Unlock()

	_, err = f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "Passw0rd"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive account, got %v", err)
	}
}

func TestAuthService_Login_LockoutScenario(t *testing.T) {
	f := newAuthFixture(AuthPolicy{MaxLoginAttempts: 5, LockoutDuration: 60 * time.Millisecond}, 0)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "wrong-Passw0rd"}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	stored, _ := f.repo.FindByID(ctx, reg.Account.ID)
	if stored.State(time.Now().UTC()) != domain.StateLocked {
		t.Fatalf("expected account locked after 5 failures")
	}

	// Correct password while locked is still refused, with the same signal.
	if _, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "Passw0rd"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials while locked, got %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	result, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "Passw0rd"})
	if err != nil {
		t.Fatalf("login after lock expiry failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected session token")
	}

	stored, _ = f.repo.FindByID(ctx, reg.Account.ID)
	if stored.LoginAttempts != 0 {
		t.Fatalf("expected attempts reset after successful login, got %d", stored.LoginAttempts)
	}
	if !stored.LockUntil.IsZero() {
		t.Fatalf("expected lock cleared after successful login")
	}
}

func TestAuthService_Login_RetriesVersionConflict(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	f.repo.mu.Lock()
	f.repo.conflicts = 2
	f.repo.mu.Unlock()

	if _, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "Passw0rd"}); err != nil {
		t.Fatalf("expected login to survive transient conflicts: %v", err)
	}
}

func TestAuthService_Login_ConflictRetriesExhausted(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	f.repo.mu.Lock()
	f.repo.conflicts = 10
	f.repo.mu.Unlock()

	if _, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "Passw0rd"}); !errors.Is(err, domain.ErrStorageConflict) {
		t.Fatalf("expected ErrStorageConflict, got %v", err)
	}
}

// --- CurrentAccount ---

func TestAuthService_CurrentAccount(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, ports.RegisterInput{Name: "Alice", Email: "a@x.com", Password: "Passw0rd", Role: "client"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := f.svc.CurrentAccount(ctx, reg.Token)
	if err != nil {
		t.Fatalf("current account failed: %v", err)
	}
	if profile.ID != reg.Account.ID || profile.Name != "Alice" || profile.Role != domain.RoleClient {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	if _, err := f.svc.CurrentAccount(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// --- ForgotPassword / ResetPassword ---

func TestAuthService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)

	if err := f.svc.ForgotPassword(context.Background(), "ghost@x.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("no mail may be sent for unknown addresses")
	}
}

func TestAuthService_ForgotPassword_SendsResetMail(t *testing.T) {
	f := newAuthFixture(AuthPolicy{ResetURLBase: "http://localhost:5173/reset-password"}, 0)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := f.svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 reset mail, got %d", len(f.mailer.sent))
	}

	plaintext := tokenFromMail(t, f.mailer.sent[0].Body)
	stored, _ := f.repo.FindByID(ctx, reg.Account.ID)
	if stored.ResetPasswordToken != HashToken(plaintext) {
		t.Fatalf("stored reset token is not the hash of the mailed one")
	}
	if !stored.ResetPasswordExpire.After(time.Now()) {
		t.Fatalf("reset expiry must be in the future")
	}
}

func TestAuthService_ForgotPassword_Throttled(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	f.throttle.allowed = false
	if err := f.svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("throttled request must look like success, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("throttled request must not send mail")
	}
}

func TestAuthService_ForgotPassword_ThrottleFailureIsOpen(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// A broken throttle must not take the reset flow down with it.
	f.throttle.allowed = false
	f.throttle.err = errors.New("redis down")

	if err := f.svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("expected reset to proceed past a broken throttle, got %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 reset mail, got %d", len(f.mailer.sent))
	}
}

func TestAuthService_ForgotPassword_RetriesVersionConflict(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	f.repo.mu.Lock()
	f.repo.conflicts = 2
	f.repo.mu.Unlock()

	if err := f.svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("expected reset to survive transient conflicts: %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 reset mail, got %d", len(f.mailer.sent))
	}
}

func TestAuthService_ForgotPassword_ConflictRetriesExhausted(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	f.repo.mu.Lock()
	f.repo.conflicts = 10
	f.repo.mu.Unlock()

	if err := f.svc.ForgotPassword(ctx, "a@x.com"); !errors.Is(err, domain.ErrStorageConflict) {
		t.Fatalf("expected ErrStorageConflict, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("no mail may go out when the token was never persisted")
	}
}

func TestAuthService_ForgotPassword_DeliveryFailure(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	f.mailer.fail = errors.New("smtp down")
	err := f.svc.ForgotPassword(ctx, "a@x.com")
	if !errors.Is(err, domain.ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}
}

func TestAuthService_ResetPassword_RoundTrip(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := f.svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	plaintext := tokenFromMail(t, f.mailer.sent[0].Body)

	result, err := f.svc.ResetPassword(ctx, plaintext, "NewPassw0rd")
	if err != nil {
		t.Fatalf("reset password failed: %v", err)
	}
	if _, err := f.minter.Verify(result.Token); err != nil {
		t.Fatalf("fresh session token invalid: %v", err)
	}

	// New password works, the old one does not.
	if _, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "NewPassw0rd"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := f.svc.Login(ctx, ports.Credentials{Email: "a@x.com", Password: "Passw0rd"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must be rejected, got %v", err)
	}

	// Single use: the token was consumed together with the password change.
	if _, err := f.svc.ResetPassword(ctx, plaintext, "OtherPassw0rd1"); !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken on reuse, got %v", err)
	}
}

func TestAuthService_ResetPassword_ExpiredToken(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 30*time.Millisecond)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := f.svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	plaintext := tokenFromMail(t, f.mailer.sent[0].Body)

	time.Sleep(50 * time.Millisecond)

	if _, err := f.svc.ResetPassword(ctx, plaintext, "NewPassw0rd"); !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken after expiry, got %v", err)
	}
}

func TestAuthService_ResetPassword_WeakNewPassword(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := f.svc.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	plaintext := tokenFromMail(t, f.mailer.sent[0].Body)

	if _, err := f.svc.ResetPassword(ctx, plaintext, "weak"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

// --- VerifyEmail ---

func TestAuthService_VerifyEmail_RoundTrip(t *testing.T) {
	f := newAuthFixture(AuthPolicy{}, 0)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "Passw0rd", Role: "client"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	plaintext := tokenFromMail(t, f.dispatch.enqueued[0].Body)

	profile, err := f.svc.VerifyEmail(ctx, plaintext)
	if err != nil {
		t.Fatalf("verify email failed: %v", err)
	}
	if !profile.IsEmailVerified {
		t.Fatalf("expected verified profile")
	}

	stored, _ := f.repo.FindByID(ctx, reg.Account.ID)
	if !stored.IsEmailVerified || stored.EmailVerificationToken != "" {
		t.Fatalf("verification state not persisted: %+v", stored)
	}

	// Single use.
	if _, err := f.svc.VerifyEmail(ctx, plaintext); !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken on reuse, got %v", err)
	}
}
