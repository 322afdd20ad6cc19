package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	appErrors "github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/errors"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/sanitize"
)

type assessmentStore interface {
	List() []models.Assessment
	Find(id string) (*models.Assessment, bool)
	FindByName(name string) (*models.Assessment, bool)
	Upsert(ctx context.Context, assessment models.Assessment) error
	Delete(ctx context.Context, id string) error
}

type evaluationCascade interface {
	DeleteByAssessment(ctx context.Context, assessmentID string) (int, error)
}

// UpsertAssessmentRequest carries caller-supplied assessment fields.
type UpsertAssessmentRequest struct {
	ID          string           `validate:"required,max=100"`
	Name        string           `validate:"required,max=200"`
	Description string           `validate:"max=10000"`
	ScopeType   models.ScopeType `validate:"omitempty"`
	ScopeIDs    []string         `validate:"dive,max=100"`
}

// AssessmentService manages assessment cycles and their scope.
type AssessmentService struct {
	repo        assessmentStore
	evaluations evaluationCascade
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(repo assessmentStore, evaluations evaluationCascade, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{repo: repo, evaluations: evaluations, validator: validate, logger: logger}
}

// List returns all assessments.
func (s *AssessmentService) List() []models.Assessment {
	return s.repo.List()
}

// Get returns one assessment by id.
func (s *AssessmentService) Get(id string) (*models.Assessment, error) {
	assessment, ok := s.repo.Find(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assessment %s not found", id))
	}
	return assessment, nil
}

// Upsert creates or replaces an assessment.
func (s *AssessmentService) Upsert(ctx context.Context, req UpsertAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid assessment")
	}
	scopeType := req.ScopeType
	if scopeType == "" {
		scopeType = models.ScopeControls
	}
	if scopeType != models.ScopeControls && scopeType != models.ScopeRequirements {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown scope type %q", scopeType))
	}

	now := nowISO()
	assessment := models.Assessment{
		ID:           req.ID,
		Name:         sanitize.Text(req.Name),
		Description:  sanitize.Text(req.Description),
		ScopeType:    scopeType,
		ScopeIDs:     req.ScopeIDs,
		CreatedDate:  now,
		LastModified: now,
	}
	if existing, ok := s.repo.Find(req.ID); ok {
		assessment.CreatedDate = existing.CreatedDate
		assessment.Observations = existing.Observations
	}
	if err := s.repo.Upsert(ctx, assessment); err != nil {
		return nil, err
	}
	s.logger.Info("assessment upserted", zap.String("assessment_id", assessment.ID))
	return &assessment, nil
}

// AddScope appends item ids to the assessment's scope, skipping ids
// already present.
func (s *AssessmentService) AddScope(ctx context.Context, id string, itemIDs []string) (*models.Assessment, error) {
	assessment, ok := s.repo.Find(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assessment %s not found", id))
	}
	present := make(map[string]bool, len(assessment.ScopeIDs))
	for _, existing := range assessment.ScopeIDs {
		present[existing] = true
	}
	changed := false
	for _, itemID := range itemIDs {
		if itemID == "" || present[itemID] {
			continue
		}
		present[itemID] = true
		assessment.ScopeIDs = append(assessment.ScopeIDs, itemID)
		changed = true
	}
	if !changed {
		return assessment, nil
	}
	assessment.LastModified = nowISO()
	if err := s.repo.Upsert(ctx, *assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

// Delete removes an assessment and cascades to its evaluations, returning
// the number of evaluations removed.
func (s *AssessmentService) Delete(ctx context.Context, id string) (int, error) {
	if _, ok := s.repo.Find(id); !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assessment %s not found", id))
	}
	removed, err := s.evaluations.DeleteByAssessment(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return removed, err
	}
	s.logger.Info("assessment deleted",
		zap.String("assessment_id", id),
		zap.Int("evaluations_removed", removed),
	)
	return removed, nil
}
