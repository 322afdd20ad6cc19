package repository

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

// EvaluationRepository holds normalized quarterly evaluations keyed by the
// (assessment, control, quarter) composite.
type EvaluationRepository struct {
	store       storage.BlobStore
	logger      *zap.Logger
	evaluations map[models.EvaluationKey]models.Evaluation
}

// NewEvaluationRepository creates a new instance of EvaluationRepository.
func NewEvaluationRepository(store storage.BlobStore, logger *zap.Logger) *EvaluationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationRepository{store: store, logger: logger}
}

// Load reads and migrates the persisted evaluations.
func (r *EvaluationRepository) Load(ctx context.Context) error {
	var list []models.Evaluation
	if err := loadState(ctx, r.store, evaluationsKey, evaluationMigrations(), &list); err != nil {
		return err
	}
	r.evaluations = make(map[models.EvaluationKey]models.Evaluation, len(list))
	for i := range list {
		r.evaluations[list[i].EvaluationKey] = list[i]
	}
	return nil
}

// List returns all evaluations in stable key order.
func (r *EvaluationRepository) List() []models.Evaluation {
	out := make([]models.Evaluation, 0, len(r.evaluations))
	for _, e := range r.evaluations {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].EvaluationKey, out[j].EvaluationKey
		if a.AssessmentID != b.AssessmentID {
			return a.AssessmentID < b.AssessmentID
		}
		if a.ControlID != b.ControlID {
			return a.ControlID < b.ControlID
		}
		return a.Quarter < b.Quarter
	})
	return out
}

// ListByAssessment returns the evaluations belonging to one assessment.
func (r *EvaluationRepository) ListByAssessment(assessmentID string) []models.Evaluation {
	var out []models.Evaluation
	for _, e := range r.List() {
		if e.AssessmentID == assessmentID {
			out = append(out, e)
		}
	}
	return out
}

// Find returns an evaluation by composite key.
func (r *EvaluationRepository) Find(key models.EvaluationKey) (*models.Evaluation, bool) {
	if e, ok := r.evaluations[key]; ok {
		return &e, true
	}
	return nil, false
}

// Upsert inserts or replaces an evaluation and persists.
func (r *EvaluationRepository) Upsert(ctx context.Context, evaluation models.Evaluation) error {
	r.ensure()
	r.evaluations[evaluation.EvaluationKey] = evaluation
	return r.save(ctx)
}

// BulkUpsert inserts or replaces many evaluations with a single persist.
func (r *EvaluationRepository) BulkUpsert(ctx context.Context, evaluations []models.Evaluation) error {
	r.ensure()
	for i := range evaluations {
		r.evaluations[evaluations[i].EvaluationKey] = evaluations[i]
	}
	return r.save(ctx)
}

// Delete removes one evaluation and persists.
func (r *EvaluationRepository) Delete(ctx context.Context, key models.EvaluationKey) error {
	if _, ok := r.evaluations[key]; !ok {
		return errNotFound("evaluation")
	}
	delete(r.evaluations, key)
	return r.save(ctx)
}

// DeleteByAssessment removes every evaluation referencing the assessment,
// returning how many were removed. This is the explicit cascade invoked by
// assessment deletion.
func (r *EvaluationRepository) DeleteByAssessment(ctx context.Context, assessmentID string) (int, error) {
	removed := 0
	for key := range r.evaluations {
		if key.AssessmentID == assessmentID {
			delete(r.evaluations, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, r.save(ctx)
}

func (r *EvaluationRepository) ensure() {
	if r.evaluations == nil {
		r.evaluations = make(map[models.EvaluationKey]models.Evaluation)
	}
}

func (r *EvaluationRepository) save(ctx context.Context) error {
	return saveState(ctx, r.store, evaluationsKey, evaluationMigrations(), r.List())
}
