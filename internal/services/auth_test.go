package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/shared"
	tu "github.com/desertthunder/mvx/internal/testing"
)

type authFixture struct {
	svc       *AuthService
	local     *shared.MemoryStorage
	session   *shared.MemoryStorage
	validator *tu.MockKeyValidator
}

func newAuthFixture() authFixture {
	logger := shared.NewLogger(io.Discard)
	local := shared.NewMemoryStorage()
	session := shared.NewMemoryStorage()
	validator := &tu.MockKeyValidator{}
	users := repositories.NewUserRepository(local, logger)
	return authFixture{
		svc:       NewAuthService(users, local, session, validator, logger),
		local:     local,
		session:   session,
		validator: validator,
	}
}

func mustGet(t *testing.T, s shared.Storage, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.GetItem(key)
	if err != nil {
		t.Fatalf("failed to read %s: %v", key, err)
	}
	return v, ok
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("Register", func(t *testing.T) {
		t.Run("Stores User", func(t *testing.T) {
			f := newAuthFixture()
			user, err := f.svc.Register(ctx, "a@b.com", "key1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID != "a@b.com" || user.Password != "key1" {
				t.Errorf("unexpected user %+v", user)
			}
			raw, _ := mustGet(t, f.local, shared.KeyUsers)
			if raw != `[{"id":"a@b.com","password":"key1"}]` {
				t.Errorf("unexpected users record %s", raw)
			}
			if len(f.validator.Keys) != 1 || f.validator.Keys[0] != "key1" {
				t.Errorf("expected key to be validated, got %v", f.validator.Keys)
			}
		})

		t.Run("Duplicate Email", func(t *testing.T) {
			f := newAuthFixture()
			if _, err := f.svc.Register(ctx, "a@b.com", "key1"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, err := f.svc.Register(ctx, "a@b.com", "key2")
			if !errors.Is(err, shared.ErrEmailRegistered) {
				t.Fatalf("expected ErrEmailRegistered, got %v", err)
			}
			if err.Error() != "Email already registered" {
				t.Errorf("unexpected message %q", err.Error())
			}
			if len(f.validator.Keys) != 1 {
				t.Error("duplicate email should be rejected before key validation")
			}
		})

		t.Run("Invalid Key", func(t *testing.T) {
			f := newAuthFixture()
			f.validator.Err = errors.New("401")

			_, err := f.svc.Register(ctx, "a@b.com", "bad")
			if !errors.Is(err, shared.ErrInvalidAPIKey) {
				t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
			}
			if _, ok := mustGet(t, f.local, shared.KeyUsers); ok {
				t.Error("rejected user should not be stored")
			}
		})

		t.Run("Empty Fields", func(t *testing.T) {
			f := newAuthFixture()
			if _, err := f.svc.Register(ctx, "", "k"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Nil Validator", func(t *testing.T) {
			logger := shared.NewLogger(io.Discard)
			local := shared.NewMemoryStorage()
			svc := NewAuthService(repositories.NewUserRepository(local, logger), local, shared.NewMemoryStorage(), nil, logger)
			if _, err := svc.Register(ctx, "a@b.com", "anything"); err != nil {
				t.Errorf("expected registration without validator, got %v", err)
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Remembered", func(t *testing.T) {
			f := newAuthFixture()
			f.svc.Register(ctx, "a@b.com", "key1")

			if _, err := f.svc.Login("a@b.com", "key1", true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v, _ := mustGet(t, f.local, shared.KeyAPIKey); v != "key1" {
				t.Errorf("expected api key to be the password, got %q", v)
			}
			if v, _ := mustGet(t, f.local, shared.KeyCurrentUser); v != "a@b.com" {
				t.Errorf("expected local current user, got %q", v)
			}
			if v, _ := mustGet(t, f.local, shared.KeyRememberMe); v != "true" {
				t.Errorf("expected remember flag, got %q", v)
			}
			if _, ok := mustGet(t, f.session, shared.KeyCurrentUser); ok {
				t.Error("session should be untouched for a remembered login")
			}
			if !f.svc.CheckAutoLogin() || !f.svc.IsRemembered() {
				t.Error("expected auto login")
			}
		})

		t.Run("Not Remembered", func(t *testing.T) {
			f := newAuthFixture()
			f.svc.Register(ctx, "a@b.com", "key1")
			f.local.SetItem(shared.KeyRememberMe, "true")

			if _, err := f.svc.Login("a@b.com", "key1", false); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v, _ := mustGet(t, f.session, shared.KeyCurrentUser); v != "a@b.com" {
				t.Errorf("expected session current user, got %q", v)
			}
			if _, ok := mustGet(t, f.local, shared.KeyRememberMe); ok {
				t.Error("expected remember flag to be removed")
			}
			if f.svc.CheckAutoLogin() {
				t.Error("non-remembered login should not auto login")
			}
			if f.svc.CurrentUser() != "a@b.com" {
				t.Errorf("expected current user from session, got %q", f.svc.CurrentUser())
			}
		})

		t.Run("Failed", func(t *testing.T) {
			f := newAuthFixture()
			f.svc.Register(ctx, "a@b.com", "key1")

			_, err := f.svc.Login("a@b.com", "wrong", false)
			if !errors.Is(err, shared.ErrLoginFailed) || err.Error() != "Login failed" {
				t.Fatalf("expected Login failed, got %v", err)
			}
			if f.svc.IsAuthenticated() {
				t.Error("failed login must not store a key")
			}
		})

		t.Run("Corrupt Users", func(t *testing.T) {
			f := newAuthFixture()
			f.local.SetItem(shared.KeyUsers, "nope")

			if _, err := f.svc.Login("a@b.com", "key1", false); !errors.Is(err, shared.ErrLoginError) {
				t.Errorf("expected ErrLoginError, got %v", err)
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		t.Run("Remembered User Id Persists", func(t *testing.T) {
			f := newAuthFixture()
			f.svc.Register(ctx, "a@b.com", "key1")
			f.svc.Login("a@b.com", "key1", true)

			if err := f.svc.Logout(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.svc.IsAuthenticated() {
				t.Error("expected api key to be cleared")
			}
			if _, err := f.svc.APIKey(); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if v, _ := mustGet(t, f.local, shared.KeyCurrentUser); v != "a@b.com" {
				t.Errorf("remembered user id should remain, got %q", v)
			}
			if f.svc.IsRemembered() {
				t.Error("expected remember flag to be cleared")
			}
		})

		t.Run("Session User Cleared", func(t *testing.T) {
			f := newAuthFixture()
			f.svc.Register(ctx, "a@b.com", "key1")
			f.svc.Login("a@b.com", "key1", false)

			if err := f.svc.Logout(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.svc.CurrentUser() != "" {
				t.Errorf("expected no current user, got %q", f.svc.CurrentUser())
			}
		})
	})

	t.Run("APIKey", func(t *testing.T) {
		f := newAuthFixture()
		if _, err := f.svc.APIKey(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		f.local.SetItem(shared.KeyAPIKey, "k")
		if key, err := f.svc.APIKey(); err != nil || key != "k" {
			t.Errorf("expected key k, got %q %v", key, err)
		}
	})
}
