package repositories

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// UserRepository manages the registered credentials stored under [shared.KeyUsers].
type UserRepository struct {
	store  shared.Storage
	logger *log.Logger
}

// NewUserRepository creates a new [UserRepository] over store
func NewUserRepository(store shared.Storage, logger *log.Logger) *UserRepository {
	return &UserRepository{store: store, logger: logger}
}

// List returns every registered user in registration order.
func (r *UserRepository) List() ([]models.User, error) {
	users := []models.User{}
	if err := readRecord(r.store, shared.KeyUsers, &users); err != nil {
		r.logger.Error("failed to read users", "error", err)
		return nil, err
	}
	return users, nil
}

// Find returns the user whose id and password both match exactly.
func (r *UserRepository) Find(email, password string) (*models.User, bool, error) {
	users, err := r.List()
	if err != nil {
		return nil, false, err
	}
	for _, u := range users {
		if u.ID == email && u.Password == password {
			return &u, true, nil
		}
	}
	return nil, false, nil
}

// Exists reports whether a user with the given id is registered.
func (r *UserRepository) Exists(email string) (bool, error) {
	users, err := r.List()
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID == email {
			return true, nil
		}
	}
	return false, nil
}

// Add appends user to the record. Duplicate checks are the caller's job.
func (r *UserRepository) Add(user models.User) error {
	users, err := r.List()
	if err != nil {
		return err
	}
	users = append(users, user)
	if err := writeRecord(r.store, shared.KeyUsers, users); err != nil {
		return err
	}
	r.logger.Debug("user registered", "id", user.ID, "total", len(users))
	return nil
}
