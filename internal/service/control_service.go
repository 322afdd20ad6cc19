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

type controlStore interface {
	List() []models.Control
	Find(controlID string) (*models.Control, bool)
	Upsert(ctx context.Context, control models.Control) error
	Delete(ctx context.Context, controlID string) error
	MaxAssignedNumber() int
}

// UpsertControlRequest carries caller-supplied control fields.
type UpsertControlRequest struct {
	ControlID                 string               `validate:"omitempty,max=100"`
	ImplementationDescription string               `validate:"max=10000"`
	OwnerID                   *int64               `validate:"omitempty,min=1"`
	StakeholderIDs            []int64              `validate:"dive,min=1"`
	LinkedRequirementIDs      []string             `validate:"dive,max=100"`
	Status                    models.ControlStatus `validate:"omitempty"`
}

// ControlService manages implementation records.
type ControlService struct {
	repo      controlStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewControlService constructs a ControlService.
func NewControlService(repo controlStore, validate *validator.Validate, logger *zap.Logger) *ControlService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ControlService{repo: repo, validator: validate, logger: logger}
}

// NextControlID assigns the next sequential CTL-NNN identifier.
func (s *ControlService) NextControlID() string {
	return fmt.Sprintf("CTL-%03d", s.repo.MaxAssignedNumber()+1)
}

// List returns all controls.
func (s *ControlService) List() []models.Control {
	return s.repo.List()
}

// Get returns one control by id.
func (s *ControlService) Get(controlID string) (*models.Control, error) {
	control, ok := s.repo.Find(controlID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("control %s not found", controlID))
	}
	return control, nil
}

// Upsert creates or replaces a control. An empty ControlID gets the next
// sequential assigned id. Free-text fields are sanitized on every write.
func (s *ControlService) Upsert(ctx context.Context, req UpsertControlRequest) (*models.Control, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid control")
	}
	status := req.Status
	if status == "" {
		status = models.ControlNotImplemented
	}
	if !models.ValidControlStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown control status %q", status))
	}

	controlID := req.ControlID
	if controlID == "" {
		controlID = s.NextControlID()
	}

	now := nowISO()
	control := models.Control{
		ControlID:                 controlID,
		ImplementationDescription: sanitize.Text(req.ImplementationDescription),
		OwnerID:                   req.OwnerID,
		StakeholderIDs:            req.StakeholderIDs,
		LinkedRequirementIDs:      req.LinkedRequirementIDs,
		Status:                    status,
		CreatedDate:               now,
		LastModified:              now,
	}
	if existing, ok := s.repo.Find(controlID); ok {
		control.CreatedDate = existing.CreatedDate
	}
	if err := s.repo.Upsert(ctx, control); err != nil {
		return nil, err
	}
	s.logger.Info("control upserted", zap.String("control_id", control.ControlID))
	return &control, nil
}

// GetOrCreateForRequirement returns the control whose id matches the
// requirement, creating a shell record linked to it on first access.
func (s *ControlService) GetOrCreateForRequirement(ctx context.Context, requirementID string) (*models.Control, error) {
	if control, ok := s.repo.Find(requirementID); ok {
		return control, nil
	}
	now := nowISO()
	control := models.Control{
		ControlID:            requirementID,
		LinkedRequirementIDs: []string{requirementID},
		Status:               models.ControlNotImplemented,
		CreatedDate:          now,
		LastModified:         now,
	}
	if err := s.repo.Upsert(ctx, control); err != nil {
		return nil, err
	}
	return &control, nil
}

// Delete removes a control.
func (s *ControlService) Delete(ctx context.Context, controlID string) error {
	return s.repo.Delete(ctx, controlID)
}
