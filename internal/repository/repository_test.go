package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/seed"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

func newTestStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewUserRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	user := &models.User{Name: "Jane Doe", Title: "Auditor", Email: "jane@example.com"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, int64(1), user.ID)

	// A fresh repository over the same store sees the persisted entry.
	reloaded := NewUserRepository(store, nil)
	require.NoError(t, reloaded.Load(ctx))
	found, ok := reloaded.FindByEmail("JANE@example.com")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", found.Name)
}

func TestUserRepositoryNextIDSkipsGaps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewUserRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	require.NoError(t, repo.Create(ctx, &models.User{ID: 7, Name: "Seeded"}))
	next := &models.User{Name: "Next"}
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, int64(8), next.ID)

	require.NoError(t, repo.Delete(ctx, 7))
	after := &models.User{Name: "After"}
	require.NoError(t, repo.Create(ctx, after))
	assert.Equal(t, int64(9), after.ID)
}

func TestAssessmentRepositorySeedsOnFirstLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewAssessmentRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	baseline, ok := repo.Find(seed.DefaultAssessmentID)
	require.True(t, ok)
	assert.Equal(t, models.ScopeRequirements, baseline.ScopeType)

	// Migration v3 runs after the v2 seed, so a fresh install already
	// carries the corrected dataset.
	q1 := baseline.Observations["GV.OC-01"].Quarters[models.Q1]
	assert.Equal(t, 7.0, q1.TargetScore)
}

func TestAssessmentRepositoryMigratesLegacyBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A version-0 blob with flat observation records and a mislabelled
	// scope type, as written before the envelope gained a version field.
	legacy := storedState{Version: 0}
	legacy.Data, _ = json.Marshal([]map[string]interface{}{{
		"id":         "OLD-1",
		"name":       "Old Cycle",
		"scope_type": "controls",
		"scope_ids":  []string{"GV.OC-01 Ex1"},
		"observations": map[string]interface{}{
			"GV.OC-01 Ex1": map[string]interface{}{
				"actual_score": 4,
				"observations": "flat record",
			},
		},
	}})
	raw, _ := json.Marshal(legacy)
	require.NoError(t, store.Put(ctx, "assessments", raw))

	repo := NewAssessmentRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	migrated, ok := repo.Find("OLD-1")
	require.True(t, ok)
	assert.Equal(t, models.ScopeRequirements, migrated.ScopeType)

	q1 := migrated.Observations["GV.OC-01 Ex1"].Quarters[models.Q1]
	assert.Equal(t, 4.0, q1.ActualScore)
	assert.Equal(t, "flat record", q1.Observations)
	assert.Equal(t, models.TestingNotStarted, migrated.Observations["GV.OC-01 Ex1"].Quarters[models.Q3].TestingStatus)

	// The non-empty store suppressed the default seed.
	_, seeded := repo.Find(seed.DefaultAssessmentID)
	assert.False(t, seeded)
}

func TestAssessmentRepositoryLoadIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewAssessmentRepository(store, nil)
	require.NoError(t, repo.Load(ctx))
	first := repo.List()

	// Persist at the current version, then reload twice more.
	require.NoError(t, repo.Upsert(ctx, first[0]))
	require.NoError(t, repo.Load(ctx))
	require.NoError(t, repo.Load(ctx))

	assert.Equal(t, len(first), len(repo.List()))
	reloaded, ok := repo.Find(seed.DefaultAssessmentID)
	require.True(t, ok)
	assert.Equal(t, first[0].Observations["GV.OC-01"].Quarters[models.Q1], reloaded.Observations["GV.OC-01"].Quarters[models.Q1])
}

func TestEvaluationRepositoryCascadeDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewEvaluationRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	mk := func(assessmentID, controlID string, q models.Quarter) models.Evaluation {
		return models.Evaluation{
			EvaluationKey: models.EvaluationKey{AssessmentID: assessmentID, ControlID: controlID, Quarter: q},
			QuarterData:   models.QuarterData{TestingStatus: models.TestingComplete},
		}
	}
	require.NoError(t, repo.BulkUpsert(ctx, []models.Evaluation{
		mk("A-1", "GV.OC-01", models.Q1),
		mk("A-1", "GV.OC-01", models.Q2),
		mk("A-2", "GV.OC-01", models.Q1),
	}))

	removed, err := repo.DeleteByAssessment(ctx, "A-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, repo.ListByAssessment("A-1"))
	assert.Len(t, repo.ListByAssessment("A-2"), 1)
}

func TestEvaluationRepositoryDropsEmptyOnLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	legacy := storedState{Version: 0}
	legacy.Data, _ = json.Marshal([]map[string]interface{}{
		{"assessment_id": "A-1", "control_id": "c1", "quarter": "Q1", "testing_status": "Not Started", "observations": "", "actual_score": 0},
		{"assessment_id": "A-1", "control_id": "c2", "quarter": "Q1", "testing_status": "Complete"},
	})
	raw, _ := json.Marshal(legacy)
	require.NoError(t, store.Put(ctx, "evaluations", raw))

	repo := NewEvaluationRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	all := repo.List()
	require.Len(t, all, 1)
	assert.Equal(t, "c2", all[0].ControlID)
}

func TestControlRepositoryMaxAssignedNumber(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewControlRepository(store, nil)
	require.NoError(t, repo.Load(ctx))
	assert.Equal(t, 0, repo.MaxAssignedNumber())

	require.NoError(t, repo.BulkUpsert(ctx, []models.Control{
		{ControlID: "CTL-002", Status: models.ControlNotImplemented},
		{ControlID: "CTL-017", Status: models.ControlNotImplemented},
		{ControlID: "GV.OC-01", Status: models.ControlNotImplemented},
	}))
	assert.Equal(t, 17, repo.MaxAssignedNumber())
}

func TestRequirementRepositorySeedsOnFirstLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewRequirementRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	frameworks := repo.Frameworks()
	require.Len(t, frameworks, 1)
	assert.Equal(t, seed.DefaultFrameworkID, frameworks[0].ID)
	assert.Len(t, repo.ListByFramework(seed.DefaultFrameworkID), len(seed.Requirements()))

	// The default assessment's scope resolves against the seeded catalog.
	_, found := repo.Find("GV.OC-01 Ex1")
	assert.True(t, found)

	// A reload of an already-current store must not re-seed over replacements.
	custom := models.Framework{ID: "custom", Name: "Custom", Version: "1"}
	require.NoError(t, repo.ReplaceFramework(ctx, custom, []models.Requirement{{ID: "C-1", FrameworkID: "custom"}}))

	reloaded := NewRequirementRepository(store, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.Frameworks(), 2)
	assert.Len(t, reloaded.ListByFramework("custom"), 1)
}

func TestRequirementRepositoryReplaceFramework(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewRequirementRepository(store, nil)
	require.NoError(t, repo.Load(ctx))

	framework := models.Framework{ID: "fw-1", Name: "Test", Version: "1"}
	first := []models.Requirement{
		{ID: "R-1", FrameworkID: "fw-1"},
		{ID: "R-2", FrameworkID: "fw-1"},
	}
	require.NoError(t, repo.ReplaceFramework(ctx, framework, first))
	assert.Len(t, repo.ListByFramework("fw-1"), 2)

	replacement := []models.Requirement{{ID: "R-9", FrameworkID: "fw-1"}}
	require.NoError(t, repo.ReplaceFramework(ctx, framework, replacement))

	remaining := repo.ListByFramework("fw-1")
	require.Len(t, remaining, 1)
	assert.Equal(t, "R-9", remaining[0].ID)
}
