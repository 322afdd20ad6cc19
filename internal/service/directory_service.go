// Package service implements the reconciliation, migration, and export
// workflows over injected entity repositories.
package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	appErrors "github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/errors"
)

type userRepository interface {
	List() []models.User
	FindByID(id int64) (*models.User, bool)
	FindByEmail(email string) (*models.User, bool)
	FindByName(name string) (*models.User, bool)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, id int64) error
}

// importedUserTitle is stamped on directory entries created lazily during
// reconciliation.
const importedUserTitle = "Imported User"

// CreateUserRequest represents payload for explicitly creating users.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Title string `json:"title"`
	Email string `json:"email" validate:"omitempty,email"`
}

// DirectoryService resolves free-text user references to stable directory
// ids, creating entries when no match exists.
type DirectoryService struct {
	repo        userRepository
	validator   *validator.Validate
	logger      *zap.Logger
	emailDomain string
}

// NewDirectoryService creates an instance of DirectoryService. emailDomain
// is used to default addresses for users created without one.
func NewDirectoryService(repo userRepository, emailDomain string, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if emailDomain == "" {
		emailDomain = "example.com"
	}
	return &DirectoryService{repo: repo, validator: validate, logger: logger, emailDomain: emailDomain}
}

// FindOrCreateUser resolves parsed user info to a directory id. A case-
// insensitive email match wins, then a case-insensitive name match; when
// neither exists a new entry is created against the live repository so
// repeated calls within one import accumulate correctly. Empty names
// resolve to nil.
func (s *DirectoryService) FindOrCreateUser(ctx context.Context, info models.UserInfo) (*int64, error) {
	if strings.TrimSpace(info.Name) == "" {
		return nil, nil
	}

	if info.Email != "" {
		if user, ok := s.repo.FindByEmail(info.Email); ok {
			return &user.ID, nil
		}
	}
	if user, ok := s.repo.FindByName(info.Name); ok {
		return &user.ID, nil
	}

	email := info.Email
	if email == "" {
		email = s.defaultEmail(info.Name)
	}
	user := models.User{
		Name:  strings.TrimSpace(info.Name),
		Title: importedUserTitle,
		Email: email,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to create imported user")
	}
	s.logger.Debug("created imported user", zap.Int64("id", user.ID), zap.String("name", user.Name))
	return &user.ID, nil
}

// ResolveReference parses a free-text reference and resolves it in one step.
func (s *DirectoryService) ResolveReference(ctx context.Context, text string) (*int64, error) {
	return s.FindOrCreateUser(ctx, models.ParseUserInfo(text))
}

// FormatUser renders the display string for a directory id: "Name <email>"
// when both are known, the bare name otherwise, the raw id when the user is
// missing, and "" for a nil id.
func (s *DirectoryService) FormatUser(id *int64) string {
	if id == nil {
		return ""
	}
	user, ok := s.repo.FindByID(*id)
	if !ok {
		return strconv.FormatInt(*id, 10)
	}
	return user.Format()
}

// List returns the full directory.
func (s *DirectoryService) List() []models.User {
	return s.repo.List()
}

// Create adds a directory entry explicitly.
func (s *DirectoryService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid user")
	}
	email := req.Email
	if email == "" {
		email = s.defaultEmail(req.Name)
	}
	user := models.User{Name: strings.TrimSpace(req.Name), Title: req.Title, Email: email}
	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to create user")
	}
	return &user, nil
}

// Update replaces a directory entry's fields, keeping its id.
func (s *DirectoryService) Update(ctx context.Context, id int64, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid user")
	}
	existing, ok := s.repo.FindByID(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user "+strconv.FormatInt(id, 10)+" not found")
	}
	user := models.User{ID: existing.ID, Name: strings.TrimSpace(req.Name), Title: req.Title, Email: req.Email}
	if user.Email == "" {
		user.Email = s.defaultEmail(user.Name)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to update user")
	}
	return &user, nil
}

// Delete removes a directory entry explicitly. References from controls and
// evaluations are left dangling intentionally; FormatUser degrades to the
// raw id.
func (s *DirectoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *DirectoryService) defaultEmail(name string) string {
	local := strings.ToLower(strings.TrimSpace(name))
	local = strings.Join(strings.Fields(local), ".")
	return local + "@" + s.emailDomain
}
