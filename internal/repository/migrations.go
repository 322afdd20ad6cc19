package repository

import (
	"encoding/json"
	"regexp"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/seed"
)

// migration is one pure transformation of a store's decoded state. Chains
// are ordered lists executed strictly ascending from the persisted version;
// an already-current store is a no-op passthrough.
type migration struct {
	version int
	apply   func(state interface{}) interface{}
}

func currentVersion(chain []migration) int {
	if len(chain) == 0 {
		return 1
	}
	return chain[len(chain)-1].version
}

func runChain(from int, state interface{}, chain []migration) interface{} {
	for _, m := range chain {
		if m.version <= from {
			continue
		}
		state = m.apply(state)
	}
	return state
}

// jsonValue round-trips a typed value into the generic JSON representation
// migrations operate on.
func jsonValue(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func asList(state interface{}) []interface{} {
	if list, ok := state.([]interface{}); ok {
		return list
	}
	return nil
}

// v4 required an exactly two-letter category code and nothing after the
// digits, which missed three-letter categories and example-suffixed ids
// like "GV.OC-01 Ex1". v5 repeats the check with the corrected pattern.
var (
	subcategoryIDReV4 = regexp.MustCompile(`^[A-Z]{2}\.[A-Z]{2}-[0-9]{2}$`)
	subcategoryIDReV5 = regexp.MustCompile(`^[A-Z]{2}\.[A-Z]{2,3}-[0-9]{2}`)
)

// assessmentMigrations is the v0..v5 chain for the assessments store.
func assessmentMigrations() []migration {
	return []migration{
		{version: 1, apply: wrapFlatObservations},
		{version: 2, apply: installDefaultAssessments},
		{version: 3, apply: repairDefaultObservations},
		{version: 4, apply: reclassifyScopeType(subcategoryIDReV4)},
		{version: 5, apply: reclassifyScopeType(subcategoryIDReV5)},
	}
}

// wrapFlatObservations (v0->v1) nests any observation record still carrying
// flat quarter fields under {quarters: {Q1: <old fields>, Q2..Q4: default}}.
// Records that already have a quarters sub-object pass through unchanged.
func wrapFlatObservations(state interface{}) interface{} {
	for _, item := range asList(state) {
		assessment, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		observations, ok := assessment["observations"].(map[string]interface{})
		if !ok {
			continue
		}
		for itemID, rawRecord := range observations {
			record, ok := rawRecord.(map[string]interface{})
			if !ok {
				continue
			}
			if _, hasQuarters := record["quarters"]; hasQuarters {
				continue
			}
			observations[itemID] = map[string]interface{}{
				"quarters": map[string]interface{}{
					"Q1": record,
					"Q2": jsonValue(models.DefaultQuarter()),
					"Q3": jsonValue(models.DefaultQuarter()),
					"Q4": jsonValue(models.DefaultQuarter()),
				},
			}
		}
	}
	return state
}

// installDefaultAssessments (v1->v2) seeds the built-in dataset on new
// installs; a non-empty persisted collection is left untouched.
func installDefaultAssessments(state interface{}) interface{} {
	if len(asList(state)) > 0 {
		return state
	}
	return jsonValue(seed.Assessments())
}

// repairDefaultObservations (v2->v3) replaces the well-known default
// assessment's embedded observations with the corrected dataset. Exact-id
// match only; every other assessment passes through.
func repairDefaultObservations(state interface{}) interface{} {
	for _, item := range asList(state) {
		assessment, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if assessment["id"] == seed.DefaultAssessmentID {
			assessment["observations"] = jsonValue(seed.CorrectedObservations())
		}
	}
	return state
}

// reclassifyScopeType (v3->v4, v4->v5) flips an assessment's scope type
// from controls to requirements when its first scope id looks like a
// subcategory id.
func reclassifyScopeType(idPattern *regexp.Regexp) func(state interface{}) interface{} {
	return func(state interface{}) interface{} {
		for _, item := range asList(state) {
			assessment, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if assessment["scope_type"] != string(models.ScopeControls) {
				continue
			}
			scopeIDs, ok := assessment["scope_ids"].([]interface{})
			if !ok || len(scopeIDs) == 0 {
				continue
			}
			first, ok := scopeIDs[0].(string)
			if ok && idPattern.MatchString(first) {
				assessment["scope_type"] = string(models.ScopeRequirements)
			}
		}
		return state
	}
}

// userMigrations backfills the directory title introduced alongside lazy
// user creation.
func userMigrations() []migration {
	return []migration{
		{version: 1, apply: func(state interface{}) interface{} {
			for _, item := range asList(state) {
				user, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if title, _ := user["title"].(string); title == "" {
					user["title"] = "Imported User"
				}
			}
			return state
		}},
	}
}

// controlMigrations defaults the status of controls persisted before the
// status enum existed.
func controlMigrations() []migration {
	return []migration{
		{version: 1, apply: func(state interface{}) interface{} {
			for _, item := range asList(state) {
				control, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if status, _ := control["status"].(string); status == "" {
					control["status"] = string(models.ControlNotImplemented)
				}
			}
			return state
		}},
	}
}

// evaluationMigrations drops evaluations that are empty per the canonical
// predicate; they are recreated on demand from the quarter default.
func evaluationMigrations() []migration {
	return []migration{
		{version: 1, apply: func(state interface{}) interface{} {
			list := asList(state)
			if list == nil {
				return state
			}
			kept := make([]interface{}, 0, len(list))
			for _, item := range list {
				eval, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				status, _ := eval["testing_status"].(string)
				observations, _ := eval["observations"].(string)
				score, _ := eval["actual_score"].(float64)
				if (status == "" || status == string(models.TestingNotStarted)) && observations == "" && score == 0 {
					continue
				}
				kept = append(kept, item)
			}
			return kept
		}},
	}
}

// requirementMigrations installs the bundled CSF 2.0 catalog on new
// installs, mirroring the assessment seed path.
func requirementMigrations() []migration {
	return []migration{
		{version: 1, apply: installDefaultCatalog},
	}
}

// installDefaultCatalog (v0->v1) seeds the bundled framework and its
// requirement subset when the persisted catalog is empty.
func installDefaultCatalog(state interface{}) interface{} {
	if obj, ok := state.(map[string]interface{}); ok {
		if reqs, ok := obj["requirements"].([]interface{}); ok && len(reqs) > 0 {
			return state
		}
	}
	return jsonValue(requirementState{
		Frameworks:   []models.Framework{seed.Framework()},
		Requirements: seed.Requirements(),
	})
}

func artifactMigrations() []migration { return nil }
