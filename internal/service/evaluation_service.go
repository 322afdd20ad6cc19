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

type evaluationStore interface {
	List() []models.Evaluation
	ListByAssessment(assessmentID string) []models.Evaluation
	Find(key models.EvaluationKey) (*models.Evaluation, bool)
	Upsert(ctx context.Context, evaluation models.Evaluation) error
	Delete(ctx context.Context, key models.EvaluationKey) error
}

type assessmentChecker interface {
	Find(id string) (*models.Assessment, bool)
}

// UpsertEvaluationRequest carries one quarterly evaluation write.
type UpsertEvaluationRequest struct {
	AssessmentID      string               `validate:"required,max=100"`
	ControlID         string               `validate:"required,max=100"`
	Quarter           models.Quarter       `validate:"required"`
	AuditorID         *int64               `validate:"omitempty,min=1"`
	ActualScore       float64              `validate:"min=0,max=10"`
	TargetScore       float64              `validate:"min=0,max=10"`
	Observations      string               `validate:"max=50000"`
	TestProcedures    string               `validate:"max=50000"`
	TestingStatus     models.TestingStatus `validate:"omitempty"`
	Examine           bool
	Interview         bool
	Test              bool
	EvaluationDate    string   `validate:"omitempty,max=30"`
	LinkedArtifactIDs []string `validate:"dive,max=100"`
	Remediation       models.Remediation
	JiraKey           string `validate:"omitempty,max=100"`
}

// EvaluationService manages quarterly evaluations.
type EvaluationService struct {
	repo        evaluationStore
	assessments assessmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(repo evaluationStore, assessments assessmentChecker, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{repo: repo, assessments: assessments, validator: validate, logger: logger}
}

// List returns all evaluations, optionally filtered by assessment.
func (s *EvaluationService) List(assessmentID string) []models.Evaluation {
	if assessmentID == "" {
		return s.repo.List()
	}
	return s.repo.ListByAssessment(assessmentID)
}

// Get returns one evaluation by composite key.
func (s *EvaluationService) Get(key models.EvaluationKey) (*models.Evaluation, error) {
	evaluation, ok := s.repo.Find(key)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("evaluation %s not found", models.FormatEvaluationID(key)))
	}
	return evaluation, nil
}

// Upsert creates or replaces an evaluation. The parent assessment must
// exist; free-text fields are sanitized on every write.
func (s *EvaluationService) Upsert(ctx context.Context, req UpsertEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid evaluation")
	}
	if !models.ValidQuarter(req.Quarter) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown quarter %q", req.Quarter))
	}
	status := req.TestingStatus
	if status == "" {
		status = models.TestingNotStarted
	}
	if !models.ValidTestingStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown testing status %q", status))
	}
	if _, ok := s.assessments.Find(req.AssessmentID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assessment %s not found", req.AssessmentID))
	}

	key := models.EvaluationKey{
		AssessmentID: req.AssessmentID,
		ControlID:    req.ControlID,
		Quarter:      req.Quarter,
	}
	now := nowISO()
	evaluation := models.Evaluation{
		EvaluationKey: key,
		QuarterData: models.QuarterData{
			AuditorID:         req.AuditorID,
			ActualScore:       req.ActualScore,
			TargetScore:       req.TargetScore,
			Observations:      sanitize.Text(req.Observations),
			TestProcedures:    sanitize.Text(req.TestProcedures),
			TestingStatus:     status,
			Examine:           req.Examine,
			Interview:         req.Interview,
			Test:              req.Test,
			EvaluationDate:    req.EvaluationDate,
			LinkedArtifactIDs: req.LinkedArtifactIDs,
			Remediation: models.Remediation{
				OwnerID:    req.Remediation.OwnerID,
				ActionPlan: sanitize.Text(req.Remediation.ActionPlan),
				DueDate:    req.Remediation.DueDate,
			},
			JiraKey: req.JiraKey,
		},
		CreatedDate:  now,
		LastModified: now,
	}
	if existing, ok := s.repo.Find(key); ok {
		evaluation.CreatedDate = existing.CreatedDate
	}
	if err := s.repo.Upsert(ctx, evaluation); err != nil {
		return nil, err
	}
	s.logger.Info("evaluation upserted", zap.String("evaluation_id", models.FormatEvaluationID(key)))
	return &evaluation, nil
}

// Delete removes an evaluation.
func (s *EvaluationService) Delete(ctx context.Context, key models.EvaluationKey) error {
	return s.repo.Delete(ctx, key)
}
