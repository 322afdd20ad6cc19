package repository

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

// requirementState is the requirements blob payload: the catalog plus the
// frameworks it was imported from.
type requirementState struct {
	Frameworks   []models.Framework   `json:"frameworks"`
	Requirements []models.Requirement `json:"requirements"`
}

// RequirementRepository holds read-only framework reference data.
type RequirementRepository struct {
	store  storage.BlobStore
	logger *zap.Logger
	state  requirementState
}

// NewRequirementRepository creates a new instance of RequirementRepository.
func NewRequirementRepository(store storage.BlobStore, logger *zap.Logger) *RequirementRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequirementRepository{store: store, logger: logger}
}

// Load reads the persisted catalog.
func (r *RequirementRepository) Load(ctx context.Context) error {
	r.state = requirementState{}
	return loadState(ctx, r.store, requirementsKey, requirementMigrations(), &r.state)
}

// List returns all requirements ordered by id.
func (r *RequirementRepository) List() []models.Requirement {
	out := append([]models.Requirement(nil), r.state.Requirements...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListByFramework returns the requirements of one framework.
func (r *RequirementRepository) ListByFramework(frameworkID string) []models.Requirement {
	var out []models.Requirement
	for _, req := range r.List() {
		if req.FrameworkID == frameworkID {
			out = append(out, req)
		}
	}
	return out
}

// Find returns a requirement by id.
func (r *RequirementRepository) Find(id string) (*models.Requirement, bool) {
	for i := range r.state.Requirements {
		if r.state.Requirements[i].ID == id {
			req := r.state.Requirements[i]
			return &req, true
		}
	}
	return nil, false
}

// Frameworks returns the imported framework descriptors.
func (r *RequirementRepository) Frameworks() []models.Framework {
	return append([]models.Framework(nil), r.state.Frameworks...)
}

// ReplaceFramework swaps the full requirement set for one framework and
// records the framework descriptor. Requirements are immutable otherwise.
func (r *RequirementRepository) ReplaceFramework(ctx context.Context, framework models.Framework, requirements []models.Requirement) error {
	kept := r.state.Requirements[:0]
	for _, req := range r.state.Requirements {
		if req.FrameworkID != framework.ID {
			kept = append(kept, req)
		}
	}
	r.state.Requirements = append(kept, requirements...)

	replaced := false
	for i := range r.state.Frameworks {
		if r.state.Frameworks[i].ID == framework.ID {
			r.state.Frameworks[i] = framework
			replaced = true
		}
	}
	if !replaced {
		r.state.Frameworks = append(r.state.Frameworks, framework)
	}
	return r.save(ctx)
}

func (r *RequirementRepository) save(ctx context.Context) error {
	return saveState(ctx, r.store, requirementsKey, requirementMigrations(), r.state)
}
