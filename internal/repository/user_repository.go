package repository

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

// UserRepository holds the user directory. Lookups are case-insensitive;
// ids are sequential from the current maximum.
type UserRepository struct {
	store  storage.BlobStore
	logger *zap.Logger
	users  []models.User
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(store storage.BlobStore, logger *zap.Logger) *UserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserRepository{store: store, logger: logger}
}

// Load reads and migrates the persisted directory.
func (r *UserRepository) Load(ctx context.Context) error {
	r.users = nil
	return loadState(ctx, r.store, usersKey, userMigrations(), &r.users)
}

// List returns all users ordered by id.
func (r *UserRepository) List() []models.User {
	out := append([]models.User(nil), r.users...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(id int64) (*models.User, bool) {
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, true
		}
	}
	return nil, false
}

// FindByEmail returns a user by case-insensitive exact email match.
func (r *UserRepository) FindByEmail(email string) (*models.User, bool) {
	if email == "" {
		return nil, false
	}
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			user := r.users[i]
			return &user, true
		}
	}
	return nil, false
}

// FindByName returns a user by case-insensitive exact name match.
func (r *UserRepository) FindByName(name string) (*models.User, bool) {
	if name == "" {
		return nil, false
	}
	for i := range r.users {
		if strings.EqualFold(r.users[i].Name, name) {
			user := r.users[i]
			return &user, true
		}
	}
	return nil, false
}

// Create appends a user, assigning the next id when unset, and persists.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = r.nextID()
	}
	r.users = append(r.users, *user)
	return r.save(ctx)
}

// Update replaces the stored user with the same id and persists.
func (r *UserRepository) Update(ctx context.Context, user models.User) error {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = user
			return r.save(ctx)
		}
	}
	return errNotFound("user")
}

// Delete removes a user by id and persists. Deletion is an explicit
// user-management action; nothing deletes directory entries automatically.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return r.save(ctx)
		}
	}
	return errNotFound("user")
}

func (r *UserRepository) nextID() int64 {
	var max int64
	for i := range r.users {
		if r.users[i].ID > max {
			max = r.users[i].ID
		}
	}
	return max + 1
}

func (r *UserRepository) save(ctx context.Context) error {
	return saveState(ctx, r.store, usersKey, userMigrations(), r.users)
}
