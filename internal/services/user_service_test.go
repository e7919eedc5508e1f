package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/authz"
)

const testMaxLogin = 3

type userFixture struct {
	repo   *fakeUserRepo
	emails *fakeEmailService
	alerts *fakeAlertService
	auth   AuthService
	svc    UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		repo:   newFakeUserRepo(),
		emails: newFakeEmailService(),
		alerts: newFakeAlertService(),
		auth:   NewAuthService(bcrypt.MinCost, []byte("test-key"), time.Hour),
	}
	f.svc = NewUserService(f.repo, f.emails, f.auth, f.alerts, testMaxLogin, testMaxAttempts)
	return f
}

func (f *userFixture) signup(t *testing.T, email, password string) int {
	t.Helper()
	u, err := f.svc.Signup(context.Background(), SignupInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
		RoleID:    authz.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return u.ID
}

func TestSignupInitializesAccount(t *testing.T) {
	f := newUserFixture()
	id := f.signup(t, "Bob@Example.com", "secret123")

	stored := f.repo.get(id)
	if stored == nil {
		t.Fatal("user not stored")
	}
	if stored.Email != "bob@example.com" {
		t.Fatalf("expected normalized email, got %q", stored.Email)
	}
	if stored.PasswordHash == "secret123" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if !f.auth.CheckPassword("secret123", stored.PasswordHash) {
		t.Fatal("stored hash does not verify")
	}
	if stored.LoginAttemptsLeft != testMaxLogin || stored.RecoveryAttemptsLeft != testMaxAttempts {
		t.Fatalf("counters not initialized: login=%d recovery=%d",
			stored.LoginAttemptsLeft, stored.RecoveryAttemptsLeft)
	}
	if stored.IsLocked {
		t.Fatal("new account must not be locked")
	}

	select {
	case to := <-f.emails.welcome:
		if to != "bob@example.com" {
			t.Fatalf("welcome email sent to %q", to)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for welcome email")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newUserFixture()
	f.signup(t, "bob@example.com", "secret123")

	_, err := f.svc.Signup(context.Background(), SignupInput{
		FirstName: "Other",
		LastName:  "Bob",
		Email:     "bob@example.com",
		Password:  "another1",
		RoleID:    authz.RoleCustomer,
	})
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestLoginSuccessKeepsCounter(t *testing.T) {
	f := newUserFixture()
	id := f.signup(t, "bob@example.com", "secret123")
	ctx := context.Background()

	// одна неудача, затем успех
	if _, _, err := f.svc.Login(ctx, "bob@example.com", "wrong-pass"); !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	token, user, err := f.svc.Login(ctx, "bob@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || user == nil {
		t.Fatal("expected token and user on success")
	}

	// успешный вход не восстанавливает счётчик
	if got := f.repo.get(id).LoginAttemptsLeft; got != testMaxLogin-1 {
		t.Fatalf("expected counter %d after one failure, got %d", testMaxLogin-1, got)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newUserFixture()
	_, _, err := f.svc.Login(context.Background(), "nobody@example.com", "whatever1")
	if !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestLoginLockout(t *testing.T) {
	f := newUserFixture()
	id := f.signup(t, "bob@example.com", "secret123")
	ctx := context.Background()

	for i := 0; i < testMaxLogin; i++ {
		if _, _, err := f.svc.Login(ctx, "bob@example.com", "wrong-pass"); !apperrors.IsKind(err, apperrors.KindUnauthorized) {
			t.Fatalf("attempt %d: expected unauthorized, got %v", i+1, err)
		}
	}

	if !f.repo.get(id).IsLocked {
		t.Fatal("account must lock when the login counter reaches zero")
	}
	if uid, ok := waitSignal(f.alerts.locked, 2*time.Second); !ok || uid != id {
		t.Fatalf("expected lock alert for userID=%d, got id=%d ok=%v", id, uid, ok)
	}

	// верный пароль больше не помогает
	if _, _, err := f.svc.Login(ctx, "bob@example.com", "secret123"); !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Fatalf("expected unauthorized for locked account, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture()
	id := f.signup(t, "bob@example.com", "secret123")
	ctx := context.Background()

	if err := f.svc.ChangePassword(ctx, id, "wrong-old", "newpass99"); !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Fatalf("expected unauthorized for wrong old password, got %v", err)
	}

	// списываем попытку входа, чтобы увидеть сброс
	if _, _, err := f.svc.Login(ctx, "bob@example.com", "wrong-pass"); err == nil {
		t.Fatal("expected login failure")
	}

	if err := f.svc.ChangePassword(ctx, id, "secret123", "newpass99"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	stored := f.repo.get(id)
	if !f.auth.CheckPassword("newpass99", stored.PasswordHash) {
		t.Fatal("new password does not verify after change")
	}
	if stored.LoginAttemptsLeft != testMaxLogin || stored.RecoveryAttemptsLeft != testMaxAttempts {
		t.Fatalf("counters must reset on password change: login=%d recovery=%d",
			stored.LoginAttemptsLeft, stored.RecoveryAttemptsLeft)
	}
}

func TestResetPassword(t *testing.T) {
	f := newUserFixture()
	id := f.signup(t, "bob@example.com", "secret123")
	ctx := context.Background()

	if err := f.svc.ResetPassword(ctx, 9999, "newpass99"); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden for unknown user, got %v", err)
	}

	if err := f.svc.ResetPassword(ctx, id, "newpass99"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}
	if !f.auth.CheckPassword("newpass99", f.repo.get(id).PasswordHash) {
		t.Fatal("new password does not verify after reset")
	}
}
