package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/seed"
)

func TestCurrentVersion(t *testing.T) {
	assert.Equal(t, 1, currentVersion(nil))
	assert.Equal(t, 5, currentVersion(assessmentMigrations()))
}

func TestRunChainSkipsAppliedVersions(t *testing.T) {
	applied := []int{}
	chain := []migration{
		{version: 1, apply: func(s interface{}) interface{} { applied = append(applied, 1); return s }},
		{version: 2, apply: func(s interface{}) interface{} { applied = append(applied, 2); return s }},
		{version: 3, apply: func(s interface{}) interface{} { applied = append(applied, 3); return s }},
	}

	runChain(2, nil, chain)
	assert.Equal(t, []int{3}, applied)

	applied = nil
	runChain(3, nil, chain)
	assert.Empty(t, applied)
}

func TestWrapFlatObservations(t *testing.T) {
	state := []interface{}{
		map[string]interface{}{
			"id": "A-1",
			"observations": map[string]interface{}{
				"GV.OC-01": map[string]interface{}{
					"actual_score": 4.0,
					"observations": "flat legacy record",
				},
			},
		},
	}

	out := wrapFlatObservations(state)

	assessment := out.([]interface{})[0].(map[string]interface{})
	record := assessment["observations"].(map[string]interface{})["GV.OC-01"].(map[string]interface{})
	quarters, ok := record["quarters"].(map[string]interface{})
	require.True(t, ok)

	q1 := quarters["Q1"].(map[string]interface{})
	assert.Equal(t, 4.0, q1["actual_score"])
	assert.Equal(t, "flat legacy record", q1["observations"])

	q2 := quarters["Q2"].(map[string]interface{})
	assert.Equal(t, string(models.TestingNotStarted), q2["testing_status"])
}

func TestWrapFlatObservationsIdempotent(t *testing.T) {
	state := []interface{}{
		map[string]interface{}{
			"id": "A-1",
			"observations": map[string]interface{}{
				"GV.OC-01": map[string]interface{}{
					"quarters": map[string]interface{}{"Q1": map[string]interface{}{"actual_score": 4.0}},
				},
			},
		},
	}

	out := wrapFlatObservations(state)
	record := out.([]interface{})[0].(map[string]interface{})["observations"].(map[string]interface{})["GV.OC-01"].(map[string]interface{})
	quarters := record["quarters"].(map[string]interface{})
	assert.Len(t, quarters, 1)
}

func TestInstallDefaultAssessments(t *testing.T) {
	out := installDefaultAssessments(nil)
	list := asList(out)
	require.Len(t, list, 1)
	assert.Equal(t, seed.DefaultAssessmentID, list[0].(map[string]interface{})["id"])

	existing := []interface{}{map[string]interface{}{"id": "mine"}}
	assert.Equal(t, existing, installDefaultAssessments(existing))
}

func TestInstallDefaultCatalog(t *testing.T) {
	out, ok := installDefaultCatalog(nil).(map[string]interface{})
	require.True(t, ok)
	reqs := out["requirements"].([]interface{})
	assert.NotEmpty(t, reqs)
	assert.Equal(t, seed.DefaultFrameworkID, reqs[0].(map[string]interface{})["framework_id"])

	existing := map[string]interface{}{
		"frameworks":   []interface{}{},
		"requirements": []interface{}{map[string]interface{}{"id": "mine"}},
	}
	assert.Equal(t, existing, installDefaultCatalog(existing))
}

func TestRepairDefaultObservationsExactIDOnly(t *testing.T) {
	state := []interface{}{
		map[string]interface{}{"id": seed.DefaultAssessmentID, "observations": map[string]interface{}{}},
		map[string]interface{}{"id": "other", "observations": map[string]interface{}{}},
	}

	out := asList(repairDefaultObservations(state))

	repaired := out[0].(map[string]interface{})["observations"].(map[string]interface{})
	assert.Contains(t, repaired, "GV.OC-01")

	untouched := out[1].(map[string]interface{})["observations"].(map[string]interface{})
	assert.Empty(t, untouched)
}

func TestReclassifyScopeTypeV4MissesWiderIDs(t *testing.T) {
	mk := func(firstScope string) []interface{} {
		return []interface{}{map[string]interface{}{
			"scope_type": string(models.ScopeControls),
			"scope_ids":  []interface{}{firstScope},
		}}
	}
	scopeType := func(state interface{}) string {
		v, _ := asList(state)[0].(map[string]interface{})["scope_type"].(string)
		return v
	}

	v4 := reclassifyScopeType(subcategoryIDReV4)
	v5 := reclassifyScopeType(subcategoryIDReV5)

	// Two-letter category: both versions flip it.
	assert.Equal(t, string(models.ScopeRequirements), scopeType(v4(mk("GV.OC-01"))))

	// Three-letter category and example-suffixed ids: only v5 catches them.
	assert.Equal(t, string(models.ScopeControls), scopeType(v4(mk("PR.IRA-01"))))
	assert.Equal(t, string(models.ScopeRequirements), scopeType(v5(mk("PR.IRA-01"))))

	assert.Equal(t, string(models.ScopeControls), scopeType(v4(mk("GV.OC-01 Ex1"))))
	assert.Equal(t, string(models.ScopeRequirements), scopeType(v5(mk("GV.OC-01 Ex1"))))

	// Plain control ids never flip.
	assert.Equal(t, string(models.ScopeControls), scopeType(v5(mk("CTL-001"))))
}

func TestEvaluationMigrationDropsEmpty(t *testing.T) {
	chain := evaluationMigrations()
	state := []interface{}{
		map[string]interface{}{"control_id": "a", "testing_status": "Not Started", "observations": "", "actual_score": 0.0},
		map[string]interface{}{"control_id": "b", "testing_status": "Complete", "observations": "", "actual_score": 0.0},
		map[string]interface{}{"control_id": "c", "testing_status": "", "observations": "kept", "actual_score": 0.0},
		map[string]interface{}{"control_id": "d", "testing_status": "", "observations": "", "actual_score": 3.0},
	}

	out := asList(runChain(0, state, chain))
	require.Len(t, out, 3)
}

func TestUserMigrationBackfillsTitle(t *testing.T) {
	state := []interface{}{
		map[string]interface{}{"id": 1.0, "name": "Jane", "title": ""},
		map[string]interface{}{"id": 2.0, "name": "Max", "title": "CISO"},
	}

	out := asList(runChain(0, state, userMigrations()))
	assert.Equal(t, "Imported User", out[0].(map[string]interface{})["title"])
	assert.Equal(t, "CISO", out[1].(map[string]interface{})["title"])
}
