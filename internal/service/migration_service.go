package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
)

type assessmentBridgeStore interface {
	List() []models.Assessment
	Upsert(ctx context.Context, assessment models.Assessment) error
}

type evaluationBridgeStore interface {
	Find(key models.EvaluationKey) (*models.Evaluation, bool)
	BulkUpsert(ctx context.Context, evaluations []models.Evaluation) error
}

// BridgeResult reports what a bridge run moved.
type BridgeResult struct {
	Assessments int `json:"assessments"`
	Evaluations int `json:"evaluations"`
	Skipped     int `json:"skipped"`
}

// MigrationService moves legacy quarter data embedded inside assessments
// into the normalized evaluation store. Blob-level schema chains run
// automatically at load time; this bridge is the one cross-entity step
// that needs both stores at once.
type MigrationService struct {
	assessments assessmentBridgeStore
	evaluations evaluationBridgeStore
	logger      *zap.Logger
}

// NewMigrationService constructs a MigrationService.
func NewMigrationService(assessments assessmentBridgeStore, evaluations evaluationBridgeStore, logger *zap.Logger) *MigrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationService{assessments: assessments, evaluations: evaluations, logger: logger}
}

// BridgeObservations extracts every non-empty embedded quarter into the
// evaluation store and clears the embedded maps. Existing evaluations are
// never overwritten, so re-running the bridge is a no-op.
func (s *MigrationService) BridgeObservations(ctx context.Context) (BridgeResult, error) {
	var result BridgeResult
	now := nowISO()

	for _, assessment := range s.assessments.List() {
		if len(assessment.Observations) == 0 {
			continue
		}

		var moved []models.Evaluation
		for itemID, record := range assessment.Observations {
			for quarter, qd := range record.Quarters {
				if qd.IsEmpty() {
					result.Skipped++
					continue
				}
				key := models.EvaluationKey{
					AssessmentID: assessment.ID,
					ControlID:    itemID,
					Quarter:      quarter,
				}
				if _, exists := s.evaluations.Find(key); exists {
					result.Skipped++
					continue
				}
				moved = append(moved, models.Evaluation{
					EvaluationKey: key,
					QuarterData:   qd,
					CreatedDate:   now,
					LastModified:  now,
				})
			}
		}

		if len(moved) > 0 {
			if err := s.evaluations.BulkUpsert(ctx, moved); err != nil {
				return result, err
			}
			result.Evaluations += len(moved)
		}

		assessment.Observations = nil
		assessment.LastModified = now
		if err := s.assessments.Upsert(ctx, assessment); err != nil {
			return result, err
		}
		result.Assessments++
	}

	s.logger.Info("observation bridge complete",
		zap.Int("assessments", result.Assessments),
		zap.Int("evaluations", result.Evaluations),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
