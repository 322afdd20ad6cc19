package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
)

type mockResolver struct {
	ids   map[string]int64
	next  int64
	calls int
}

func newMockResolver() *mockResolver {
	return &mockResolver{ids: make(map[string]int64)}
}

func (m *mockResolver) ResolveReference(_ context.Context, text string) (*int64, error) {
	info := models.ParseUserInfo(text)
	if info.Name == "" {
		return nil, nil
	}
	m.calls++
	key := strings.ToLower(info.Name)
	if info.Email != "" {
		key = strings.ToLower(info.Email)
	}
	if id, ok := m.ids[key]; ok {
		return &id, nil
	}
	m.next++
	m.ids[key] = m.next
	id := m.next
	return &id, nil
}

type mockControlStore struct {
	existing map[string]models.Control
	saved    []models.Control
}

func (m *mockControlStore) Find(controlID string) (*models.Control, bool) {
	if c, ok := m.existing[controlID]; ok {
		return &c, true
	}
	return nil, false
}

func (m *mockControlStore) BulkUpsert(_ context.Context, controls []models.Control) error {
	m.saved = append(m.saved, controls...)
	return nil
}

type mockAssessmentStore struct {
	existing map[string]models.Assessment
	saved    []models.Assessment
}

func (m *mockAssessmentStore) Find(id string) (*models.Assessment, bool) {
	if a, ok := m.existing[id]; ok {
		return &a, true
	}
	return nil, false
}

func (m *mockAssessmentStore) FindByName(name string) (*models.Assessment, bool) {
	for _, a := range m.existing {
		if a.Name == name {
			return &a, true
		}
	}
	return nil, false
}

func (m *mockAssessmentStore) BulkUpsert(_ context.Context, assessments []models.Assessment) error {
	m.saved = append(m.saved, assessments...)
	return nil
}

type mockEvaluationStore struct {
	existing map[models.EvaluationKey]models.Evaluation
	saved    []models.Evaluation
}

func (m *mockEvaluationStore) Find(key models.EvaluationKey) (*models.Evaluation, bool) {
	if e, ok := m.existing[key]; ok {
		return &e, true
	}
	return nil, false
}

func (m *mockEvaluationStore) BulkUpsert(_ context.Context, evaluations []models.Evaluation) error {
	m.saved = append(m.saved, evaluations...)
	return nil
}

type mockRequirementStore struct {
	framework models.Framework
	saved     []models.Requirement
}

func (m *mockRequirementStore) ReplaceFramework(_ context.Context, framework models.Framework, requirements []models.Requirement) error {
	m.framework = framework
	m.saved = requirements
	return nil
}

type importFixture struct {
	svc          *ImportService
	resolver     *mockResolver
	controls     *mockControlStore
	assessments  *mockAssessmentStore
	evaluations  *mockEvaluationStore
	requirements *mockRequirementStore
}

func newImportFixture() *importFixture {
	f := &importFixture{
		resolver:     newMockResolver(),
		controls:     &mockControlStore{existing: make(map[string]models.Control)},
		assessments:  &mockAssessmentStore{existing: make(map[string]models.Assessment)},
		evaluations:  &mockEvaluationStore{existing: make(map[models.EvaluationKey]models.Evaluation)},
		requirements: &mockRequirementStore{},
	}
	f.svc = NewImportService(f.resolver, f.controls, f.assessments, f.evaluations, f.requirements, nil)
	return f
}

func (f *importFixture) savedEvaluation(t *testing.T, key models.EvaluationKey) models.Evaluation {
	t.Helper()
	for _, e := range f.evaluations.saved {
		if e.EvaluationKey == key {
			return e
		}
	}
	t.Fatalf("evaluation %v not saved", key)
	return models.Evaluation{}
}

func TestImportStandardLayout(t *testing.T) {
	f := newImportFixture()
	csv := "ID,Assessment,Owner,Status,Q1 Actual Score,Q1 Target Score,Q1 Observations,Q2 Testing Status\n" +
		"GV.OC-01,Annual 2025,Jane Doe <jane@example.com>,Implemented,7,8,Reviewed org context,In Progress\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, FormatStandard, result.Format)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, f.assessments.saved, 1)
	assessment := f.assessments.saved[0]
	assert.Equal(t, "Annual 2025", assessment.Name)
	assert.Equal(t, []string{"GV.OC-01"}, assessment.ScopeIDs)
	assert.Equal(t, models.ScopeRequirements, assessment.ScopeType)

	require.Len(t, f.controls.saved, 1)
	control := f.controls.saved[0]
	assert.Equal(t, "GV.OC-01", control.ControlID)
	assert.Equal(t, models.ControlImplemented, control.Status)
	require.NotNil(t, control.OwnerID)

	require.Len(t, f.evaluations.saved, 2)
	q1 := f.savedEvaluation(t, models.EvaluationKey{AssessmentID: assessment.ID, ControlID: "GV.OC-01", Quarter: models.Q1})
	assert.Equal(t, 7.0, q1.ActualScore)
	assert.Equal(t, 8.0, q1.TargetScore)
	assert.Equal(t, "Reviewed org context", q1.Observations)

	q2 := f.savedEvaluation(t, models.EvaluationKey{AssessmentID: assessment.ID, ControlID: "GV.OC-01", Quarter: models.Q2})
	assert.Equal(t, models.TestingInProgress, q2.TestingStatus)
}

func TestImportStandardCarriesAssessmentName(t *testing.T) {
	f := newImportFixture()
	csv := "ID,Assessment,Q1 Observations\n" +
		"GV.OC-01,Annual 2025,first\n" +
		"GV.OC-02,,second\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatStandard)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	require.Len(t, f.assessments.saved, 1)
	assert.Equal(t, []string{"GV.OC-01", "GV.OC-02"}, f.assessments.saved[0].ScopeIDs)
}

func TestImportSkipsUnidentifiableRows(t *testing.T) {
	f := newImportFixture()
	lines := []string{"ID,Assessment,Q1 Observations"}
	lines = append(lines,
		"GV.OC-01,Annual,note",
		"GV.OC-02,Annual,note",
		",Annual,orphaned note",
		"GV.OC-03,Annual,note",
		"GV.OC-04,Annual,note",
	)

	result, err := f.svc.ImportCSV(context.Background(), []byte(strings.Join(lines, "\n")), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportLegacySinglePeriod(t *testing.T) {
	f := newImportFixture()
	csv := "ID,Assessment,Actual Score,Observations,Testing Status\n" +
		"PR.AA-01,Legacy Cycle,6,identity checks pass,Complete\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatLegacy, result.Format)

	require.Len(t, f.evaluations.saved, 1)
	evaluation := f.evaluations.saved[0]
	assert.Equal(t, models.Q1, evaluation.Quarter)
	assert.Equal(t, 6.0, evaluation.ActualScore)
	assert.Equal(t, models.TestingComplete, evaluation.TestingStatus)
}

func TestImportTrackerEpicAndChild(t *testing.T) {
	f := newImportFixture()
	csv := "Issue Type,Issue key,Issue id,Summary,Parent key,Status,Assignee\n" +
		"Epic,EPIC-1,10001,MyAssessment,,,\n" +
		"Work paper,WP-7,10002,WP-MyAssessment-GV.OC-01-Q2,EPIC-1,In Progress,Jane Doe\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatTracker, result.Format)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, f.assessments.saved, 1)
	assessment := f.assessments.saved[0]
	assert.Equal(t, "EPIC-1", assessment.ID)
	assert.Equal(t, "MyAssessment", assessment.Name)

	key := models.EvaluationKey{AssessmentID: "EPIC-1", ControlID: "GV.OC-01", Quarter: models.Q2}
	evaluation := f.savedEvaluation(t, key)
	assert.Equal(t, models.TestingInProgress, evaluation.TestingStatus)
	assert.Equal(t, "WP-7", evaluation.JiraKey)
	require.NotNil(t, evaluation.AuditorID)
}

func TestImportTrackerParentByInternalID(t *testing.T) {
	f := newImportFixture()
	csv := "Issue Type,Issue key,Issue id,Summary,Parent id,Custom field (Compliance Requirement)\n" +
		"Epic,EPIC-9,20001,Q3 Review,,\n" +
		"Work paper,WP-1,20002,anything at all,20001,PR.AA-01\n"

	_, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatTracker)
	require.NoError(t, err)

	key := models.EvaluationKey{AssessmentID: "EPIC-9", ControlID: "PR.AA-01", Quarter: models.Q1}
	f.savedEvaluation(t, key)
}

func TestImportTrackerDanglingParent(t *testing.T) {
	f := newImportFixture()
	csv := "Issue Type,Issue key,Summary,Parent key\n" +
		"Work paper,WP-1,WP-Ghost-GV.OC-01-Q1,EPIC-MISSING\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatTracker)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	require.Len(t, f.assessments.saved, 1)
	assert.Equal(t, "EPIC-MISSING", f.assessments.saved[0].ID)
}

// A row without an item id is skipped outright even when its dangling
// parent reference would otherwise spawn a synthetic assessment.
func TestImportTrackerSkippedRowCommitsNothing(t *testing.T) {
	f := newImportFixture()
	csv := "Issue Type,Issue key,Summary,Parent key\n" +
		"Work paper,,,NOPE-1\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatTracker)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, f.assessments.saved)
	assert.Empty(t, f.evaluations.saved)
}

func TestImportTrackerNoParentSkipped(t *testing.T) {
	f := newImportFixture()
	csv := "Issue Type,Issue key,Summary,Parent key\n" +
		"Work paper,WP-1,WP-Ghost-GV.OC-01-Q1,\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatTracker)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, f.evaluations.saved)
}

func TestImportOutOfRangeScoreWarns(t *testing.T) {
	f := newImportFixture()
	csv := "ID,Assessment,Q1 Actual Score\n" +
		"GV.OC-01,Annual,15\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatStandard)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "row 2")
	assert.Contains(t, result.Warnings[0], "out of range")
}

func TestImportSerialDateCoercion(t *testing.T) {
	f := newImportFixture()
	csv := "ID,Assessment,Q1 Observations,Q1 Observation Date\n" +
		"GV.OC-01,Annual,reviewed,45000\n"

	_, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatStandard)
	require.NoError(t, err)

	require.Len(t, f.evaluations.saved, 1)
	assert.Equal(t, "2023-03-15", f.evaluations.saved[0].EvaluationDate)
}

func TestImportSanitizesMarkup(t *testing.T) {
	f := newImportFixture()
	csv := "ID,Assessment,Implementation Description,Q1 Observations\n" +
		`GV.OC-01,Annual,"<script>alert(1)</script>Documented & approved","<b>bold</b> notes"` + "\n"

	_, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatStandard)
	require.NoError(t, err)

	require.Len(t, f.controls.saved, 1)
	assert.Equal(t, "Documented & approved", f.controls.saved[0].ImplementationDescription)
	require.Len(t, f.evaluations.saved, 1)
	assert.Equal(t, "bold notes", f.evaluations.saved[0].Observations)
}

func TestImportRequirementsCatalog(t *testing.T) {
	f := newImportFixture()
	csv := "Function,Category,Subcategory ID,Subcategory Description,Implementation Example\n" +
		"GOVERN,Organizational Context (GV.OC),GV.OC-01,Mission is understood,Example one\n" +
		"GOVERN,Organizational Context (GV.OC),GV.OC-01,Mission is understood,Example two\n"

	result, err := f.svc.ImportCSV(context.Background(), []byte(csv), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatRequirements, result.Format)
	assert.Equal(t, 2, result.Requirements)

	assert.Equal(t, "nist-csf-2.0", f.requirements.framework.ID)
	require.Len(t, f.requirements.saved, 2)
	assert.Equal(t, "GV.OC-01 Ex1", f.requirements.saved[0].ID)
	assert.Equal(t, "GV.OC-01 Ex2", f.requirements.saved[1].ID)
	assert.Equal(t, "GV.OC-01", f.requirements.saved[1].SubcategoryID)
}

func TestImportRequirementsCustomFramework(t *testing.T) {
	f := newImportFixture()
	csv := "Subcategory ID,Subcategory Description\nAC-01,Access control policy\n"

	framework := models.Framework{ID: "custom-1", Name: "Custom", Version: "1.0"}
	_, err := f.svc.ImportRequirements(context.Background(), []byte(csv), framework)
	require.NoError(t, err)

	assert.Equal(t, "custom-1", f.requirements.framework.ID)
	require.Len(t, f.requirements.saved, 1)
	assert.Equal(t, "custom-1", f.requirements.saved[0].FrameworkID)
}

func TestImportEmptyInputFails(t *testing.T) {
	f := newImportFixture()
	_, err := f.svc.ImportCSV(context.Background(), nil, FormatAuto)
	assert.Error(t, err)
	assert.Empty(t, f.assessments.saved)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ImportFormat
	}{
		{"tracker", []string{"Issue Type", "Issue key", "Summary"}, FormatTracker},
		{"standard", []string{"ID", "Assessment", "Q3 Actual Score"}, FormatStandard},
		{"requirements by subcategory", []string{"Subcategory ID", "Subcategory Description"}, FormatRequirements},
		{"requirements by function", []string{"Function", "Category", "Subcategory Description"}, FormatRequirements},
		{"legacy fallback", []string{"ID", "Assessment", "Actual Score"}, FormatLegacy},
		{"function with assessment is legacy", []string{"Function", "Category", "Assessment"}, FormatLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectFormat(tt.headers))
		})
	}
}
