package repository

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

// ArtifactRepository holds evidence records.
type ArtifactRepository struct {
	store     storage.BlobStore
	logger    *zap.Logger
	artifacts []models.Artifact
}

// NewArtifactRepository creates a new instance of ArtifactRepository.
func NewArtifactRepository(store storage.BlobStore, logger *zap.Logger) *ArtifactRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactRepository{store: store, logger: logger}
}

// Load reads the persisted artifacts.
func (r *ArtifactRepository) Load(ctx context.Context) error {
	r.artifacts = nil
	return loadState(ctx, r.store, artifactsKey, artifactMigrations(), &r.artifacts)
}

// List returns all artifacts ordered by id.
func (r *ArtifactRepository) List() []models.Artifact {
	out := append([]models.Artifact(nil), r.artifacts...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Find returns an artifact by id.
func (r *ArtifactRepository) Find(id string) (*models.Artifact, bool) {
	for i := range r.artifacts {
		if r.artifacts[i].ID == id {
			artifact := r.artifacts[i]
			return &artifact, true
		}
	}
	return nil, false
}

// Upsert inserts or replaces an artifact by id and persists.
func (r *ArtifactRepository) Upsert(ctx context.Context, artifact models.Artifact) error {
	for i := range r.artifacts {
		if r.artifacts[i].ID == artifact.ID {
			r.artifacts[i] = artifact
			return r.save(ctx)
		}
	}
	r.artifacts = append(r.artifacts, artifact)
	return r.save(ctx)
}

// Delete removes an artifact by id and persists.
func (r *ArtifactRepository) Delete(ctx context.Context, id string) error {
	for i := range r.artifacts {
		if r.artifacts[i].ID == id {
			r.artifacts = append(r.artifacts[:i], r.artifacts[i+1:]...)
			return r.save(ctx)
		}
	}
	return errNotFound("artifact")
}

func (r *ArtifactRepository) save(ctx context.Context) error {
	return saveState(ctx, r.store, artifactsKey, artifactMigrations(), r.artifacts)
}
