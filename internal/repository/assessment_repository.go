package repository

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

// AssessmentRepository holds assessment records. Load runs the full v0..v5
// migration chain, so callers always see the current shape.
type AssessmentRepository struct {
	store       storage.BlobStore
	logger      *zap.Logger
	assessments []models.Assessment
}

// NewAssessmentRepository creates a new instance of AssessmentRepository.
func NewAssessmentRepository(store storage.BlobStore, logger *zap.Logger) *AssessmentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentRepository{store: store, logger: logger}
}

// Load reads and migrates the persisted assessments.
func (r *AssessmentRepository) Load(ctx context.Context) error {
	r.assessments = nil
	return loadState(ctx, r.store, assessmentsKey, assessmentMigrations(), &r.assessments)
}

// List returns all assessments ordered by id.
func (r *AssessmentRepository) List() []models.Assessment {
	out := append([]models.Assessment(nil), r.assessments...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Find returns an assessment by id.
func (r *AssessmentRepository) Find(id string) (*models.Assessment, bool) {
	for i := range r.assessments {
		if r.assessments[i].ID == id {
			assessment := r.assessments[i]
			return &assessment, true
		}
	}
	return nil, false
}

// FindByName returns an assessment by exact name match.
func (r *AssessmentRepository) FindByName(name string) (*models.Assessment, bool) {
	for i := range r.assessments {
		if r.assessments[i].Name == name {
			assessment := r.assessments[i]
			return &assessment, true
		}
	}
	return nil, false
}

// Upsert inserts or replaces an assessment by id and persists.
func (r *AssessmentRepository) Upsert(ctx context.Context, assessment models.Assessment) error {
	r.put(assessment)
	return r.save(ctx)
}

// BulkUpsert inserts or replaces many assessments with a single persist.
func (r *AssessmentRepository) BulkUpsert(ctx context.Context, assessments []models.Assessment) error {
	for i := range assessments {
		r.put(assessments[i])
	}
	return r.save(ctx)
}

// Delete removes an assessment by id and persists. Evaluations referencing
// it are cascade-deleted by the service layer, never implicitly here.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	for i := range r.assessments {
		if r.assessments[i].ID == id {
			r.assessments = append(r.assessments[:i], r.assessments[i+1:]...)
			return r.save(ctx)
		}
	}
	return errNotFound("assessment")
}

func (r *AssessmentRepository) put(assessment models.Assessment) {
	for i := range r.assessments {
		if r.assessments[i].ID == assessment.ID {
			r.assessments[i] = assessment
			return
		}
	}
	r.assessments = append(r.assessments, assessment)
}

func (r *AssessmentRepository) save(ctx context.Context) error {
	return saveState(ctx, r.store, assessmentsKey, assessmentMigrations(), r.assessments)
}
