package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/shared"
)

// AuthService registers users and tracks who is signed in.
//
// The signed-in state lives in two storages: local holds the API key, the remembered user and
// the remember flag; session holds the user id for a login that was not remembered.
type AuthService struct {
	users     *repositories.UserRepository
	local     shared.Storage
	session   shared.Storage
	validator KeyValidator
	logger    *log.Logger
}

// NewAuthService creates an [AuthService]. A nil validator accepts every key.
func NewAuthService(users *repositories.UserRepository, local, session shared.Storage, validator KeyValidator, logger *log.Logger) *AuthService {
	return &AuthService{users: users, local: local, session: session, validator: validator, logger: logger}
}

// SetValidator replaces the key validator used by [AuthService.Register].
func (s *AuthService) SetValidator(v KeyValidator) {
	s.validator = v
}

// Register stores a new user whose password must be a working API key.
//
// It fails with [shared.ErrEmailRegistered] when the id is taken and [shared.ErrInvalidAPIKey]
// when the key is rejected; in both cases nothing is stored.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrInvalidInput)
	}

	exists, err := s.users.Exists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrEmailRegistered
	}

	if s.validator != nil {
		if err := s.validator.ValidateKey(ctx, password); err != nil {
			s.logger.Warn("registration rejected", "email", email, "error", err)
			return nil, shared.ErrInvalidAPIKey
		}
	}

	user := models.User{ID: email, Password: password}
	if err := s.users.Add(user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "email", email)
	return &user, nil
}

// Login signs in the user with exactly this email and password.
//
// A remembered login persists the user in local storage; otherwise the user is kept in
// session storage and any previous remember flag is cleared. A missing pair fails with
// [shared.ErrLoginFailed] and storage failures with [shared.ErrLoginError].
func (s *AuthService) Login(email, password string, remember bool) (*models.User, error) {
	user, found, err := s.users.Find(email, password)
	if err != nil {
		s.logger.Error("login failed to read users", "error", err)
		return nil, shared.ErrLoginError
	}
	if !found {
		return nil, shared.ErrLoginFailed
	}

	if err := s.signIn(user, remember); err != nil {
		s.logger.Error("login failed to persist session", "error", err)
		return nil, shared.ErrLoginError
	}
	s.logger.Info("signed in", "email", email, "remember", remember)
	return user, nil
}

func (s *AuthService) signIn(user *models.User, remember bool) error {
	if err := s.local.SetItem(shared.KeyAPIKey, user.Password); err != nil {
		return err
	}
	if remember {
		if err := s.local.SetItem(shared.KeyCurrentUser, user.ID); err != nil {
			return err
		}
		return s.local.SetItem(shared.KeyRememberMe, "true")
	}
	if err := s.session.SetItem(shared.KeyCurrentUser, user.ID); err != nil {
		return err
	}
	return s.local.RemoveItem(shared.KeyRememberMe)
}

// Logout clears the API key and the signed-in user.
//
// A remembered user id is left in local storage; only the key and flag are removed.
func (s *AuthService) Logout() error {
	remembered := s.IsRemembered()
	steps := []struct {
		store shared.Storage
		key   string
		skip  bool
	}{
		{s.local, shared.KeyAPIKey, false},
		{s.local, shared.KeyCurrentUser, remembered},
		{s.session, shared.KeyCurrentUser, false},
		{s.local, shared.KeyRememberMe, false},
	}

	var errs []error
	for _, step := range steps {
		if step.skip {
			continue
		}
		if err := step.store.RemoveItem(step.key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("logout incomplete", "error", err)
		return err
	}
	s.logger.Info("signed out")
	return nil
}

func (s *AuthService) item(store shared.Storage, key string) string {
	v, ok, err := store.GetItem(key)
	if err != nil {
		s.logger.Error("failed to read storage", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// CurrentUser returns the signed-in user id from local storage, then session storage, or "".
func (s *AuthService) CurrentUser() string {
	if u := s.item(s.local, shared.KeyCurrentUser); u != "" {
		return u
	}
	return s.item(s.session, shared.KeyCurrentUser)
}

// IsRemembered reports whether the last login asked to be remembered.
func (s *AuthService) IsRemembered() bool {
	return s.item(s.local, shared.KeyRememberMe) == "true"
}

// CheckAutoLogin reports whether a remembered user can skip the sign-in form.
func (s *AuthService) CheckAutoLogin() bool {
	return s.IsRemembered() && s.item(s.local, shared.KeyCurrentUser) != "" && s.item(s.local, shared.KeyAPIKey) != ""
}

// IsAuthenticated reports whether an API key is stored. Protected views require it.
func (s *AuthService) IsAuthenticated() bool {
	return s.item(s.local, shared.KeyAPIKey) != ""
}

// APIKey returns the stored API key or [shared.ErrNotAuthenticated].
func (s *AuthService) APIKey() (string, error) {
	key, ok, err := s.local.GetItem(shared.KeyAPIKey)
	if err != nil {
		return "", err
	}
	if !ok || key == "" {
		return "", shared.ErrNotAuthenticated
	}
	return key, nil
}
