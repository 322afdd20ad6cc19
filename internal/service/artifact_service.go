package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	appErrors "github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/errors"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/sanitize"
)

type artifactStore interface {
	List() []models.Artifact
	Find(id string) (*models.Artifact, bool)
	Upsert(ctx context.Context, artifact models.Artifact) error
	Delete(ctx context.Context, id string) error
}

// UpsertArtifactRequest carries caller-supplied artifact fields.
type UpsertArtifactRequest struct {
	ID          string `validate:"omitempty,max=100"`
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=10000"`
	URL         string `validate:"omitempty,url,max=2000"`
}

// ArtifactService manages evidence records.
type ArtifactService struct {
	repo      artifactStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewArtifactService constructs an ArtifactService.
func NewArtifactService(repo artifactStore, validate *validator.Validate, logger *zap.Logger) *ArtifactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactService{repo: repo, validator: validate, logger: logger}
}

// List returns all artifacts.
func (s *ArtifactService) List() []models.Artifact {
	return s.repo.List()
}

// Get returns one artifact by id.
func (s *ArtifactService) Get(id string) (*models.Artifact, error) {
	artifact, ok := s.repo.Find(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("artifact %s not found", id))
	}
	return artifact, nil
}

// Upsert creates or replaces an artifact. An empty ID gets a generated one.
func (s *ArtifactService) Upsert(ctx context.Context, req UpsertArtifactRequest) (*models.Artifact, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid artifact")
	}
	id := req.ID
	if id == "" {
		id = "ART-" + uuid.NewString()
	}
	artifact := models.Artifact{
		ID:           id,
		Name:         sanitize.Text(req.Name),
		Description:  sanitize.Text(req.Description),
		URL:          req.URL,
		UploadedDate: nowISO(),
	}
	if existing, ok := s.repo.Find(id); ok {
		artifact.UploadedDate = existing.UploadedDate
	}
	if err := s.repo.Upsert(ctx, artifact); err != nil {
		return nil, err
	}
	s.logger.Info("artifact upserted", zap.String("artifact_id", artifact.ID))
	return &artifact, nil
}

// Delete removes an artifact.
func (s *ArtifactService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
