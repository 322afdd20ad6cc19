package repository

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

var ctlIDRe = regexp.MustCompile(`^CTL-(\d+)$`)

// ControlRepository holds user-owned control records.
type ControlRepository struct {
	store    storage.BlobStore
	logger   *zap.Logger
	controls []models.Control
}

// NewControlRepository creates a new instance of ControlRepository.
func NewControlRepository(store storage.BlobStore, logger *zap.Logger) *ControlRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ControlRepository{store: store, logger: logger}
}

// Load reads and migrates the persisted controls.
func (r *ControlRepository) Load(ctx context.Context) error {
	r.controls = nil
	return loadState(ctx, r.store, controlsKey, controlMigrations(), &r.controls)
}

// List returns all controls ordered by id.
func (r *ControlRepository) List() []models.Control {
	out := append([]models.Control(nil), r.controls...)
	sort.Slice(out, func(i, j int) bool { return out[i].ControlID < out[j].ControlID })
	return out
}

// Find returns a control by id.
func (r *ControlRepository) Find(controlID string) (*models.Control, bool) {
	for i := range r.controls {
		if r.controls[i].ControlID == controlID {
			control := r.controls[i]
			return &control, true
		}
	}
	return nil, false
}

// Upsert inserts or replaces a control by id and persists.
func (r *ControlRepository) Upsert(ctx context.Context, control models.Control) error {
	r.put(control)
	return r.save(ctx)
}

// BulkUpsert inserts or replaces many controls with a single persist.
func (r *ControlRepository) BulkUpsert(ctx context.Context, controls []models.Control) error {
	for i := range controls {
		r.put(controls[i])
	}
	return r.save(ctx)
}

// Delete removes a control by id and persists.
func (r *ControlRepository) Delete(ctx context.Context, controlID string) error {
	for i := range r.controls {
		if r.controls[i].ControlID == controlID {
			r.controls = append(r.controls[:i], r.controls[i+1:]...)
			return r.save(ctx)
		}
	}
	return errNotFound("control")
}

// MaxAssignedNumber returns the highest numeric suffix among CTL-NNN ids,
// zero when none exist.
func (r *ControlRepository) MaxAssignedNumber() int {
	max := 0
	for i := range r.controls {
		m := ctlIDRe.FindStringSubmatch(r.controls[i].ControlID)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

func (r *ControlRepository) put(control models.Control) {
	for i := range r.controls {
		if r.controls[i].ControlID == control.ControlID {
			r.controls[i] = control
			return
		}
	}
	r.controls = append(r.controls, control)
}

func (r *ControlRepository) save(ctx context.Context) error {
	return saveState(ctx, r.store, controlsKey, controlMigrations(), r.controls)
}
