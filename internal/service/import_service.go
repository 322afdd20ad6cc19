package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	appErrors "github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/errors"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/sanitize"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/tabular"
)

type directoryResolver interface {
	ResolveReference(ctx context.Context, text string) (*int64, error)
}

type controlImportStore interface {
	Find(controlID string) (*models.Control, bool)
	BulkUpsert(ctx context.Context, controls []models.Control) error
}

type assessmentImportStore interface {
	Find(id string) (*models.Assessment, bool)
	FindByName(name string) (*models.Assessment, bool)
	BulkUpsert(ctx context.Context, assessments []models.Assessment) error
}

type evaluationImportStore interface {
	Find(key models.EvaluationKey) (*models.Evaluation, bool)
	BulkUpsert(ctx context.Context, evaluations []models.Evaluation) error
}

type requirementImportStore interface {
	ReplaceFramework(ctx context.Context, framework models.Framework, requirements []models.Requirement) error
}

// ImportFormat selects a row layout; FormatAuto sniffs the header set.
type ImportFormat string

const (
	FormatAuto         ImportFormat = "auto"
	FormatStandard     ImportFormat = "standard"
	FormatLegacy       ImportFormat = "legacy"
	FormatTracker      ImportFormat = "tracker"
	FormatRequirements ImportFormat = "requirements"
)

// ImportResult reports what one import contributed. Imported reflects only
// rows that produced or updated an entity; unidentifiable rows are counted
// in Skipped, never reported as errors.
type ImportResult struct {
	Format       ImportFormat `json:"format"`
	Imported     int          `json:"imported"`
	Skipped      int          `json:"skipped"`
	Assessments  int          `json:"assessments"`
	Controls     int          `json:"controls"`
	Evaluations  int          `json:"evaluations"`
	Requirements int          `json:"requirements"`
	Warnings     []string     `json:"warnings,omitempty"`
}

// wpSummaryRe matches the structured work-paper summary
// "WP-<assessment>-<itemId>-Q<n>". The assessment segment never contains a
// hyphen; the item id may.
var wpSummaryRe = regexp.MustCompile(`^WP-([^-]+)-(.+)-(Q[1-4])\s*$`)

var quarterSuffixRe = regexp.MustCompile(`\b(Q[1-4])\s*$`)

// ImportService reconciles heterogeneous imported row shapes into
// normalized entities. It never silently drops a row that has an
// identifiable item id.
type ImportService struct {
	directory    directoryResolver
	controls     controlImportStore
	assessments  assessmentImportStore
	evaluations  evaluationImportStore
	requirements requirementImportStore
	logger       *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(directory directoryResolver, controls controlImportStore, assessments assessmentImportStore, evaluations evaluationImportStore, requirements requirementImportStore, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		directory:    directory,
		controls:     controls,
		assessments:  assessments,
		evaluations:  evaluations,
		requirements: requirements,
		logger:       logger,
	}
}

// ImportCSV parses the payload and reconciles it into the entity stores.
// Malformed tabular text rejects the whole operation with the offending row
// when determinable; nothing is committed in that case. Row-level issues
// never abort the batch.
func (s *ImportService) ImportCSV(ctx context.Context, data []byte, format ImportFormat) (*ImportResult, error) {
	parsed, err := tabular.Decode(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, "import failed")
	}

	if format == "" || format == FormatAuto {
		format = detectFormat(parsed.Headers)
	}

	result := &ImportResult{Format: format}
	for _, w := range parsed.Warnings {
		result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %s", w.Row, w.Message))
	}

	switch format {
	case FormatStandard:
		err = s.reconcileStandard(ctx, parsed.Records, result, false)
	case FormatLegacy:
		err = s.reconcileStandard(ctx, parsed.Records, result, true)
	case FormatTracker:
		err = s.reconcileTracker(ctx, parsed.Records, result)
	case FormatRequirements:
		err = s.reconcileRequirements(ctx, parsed.Records, models.Framework{}, result)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown import format %q", format))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("import complete",
		zap.String("format", string(format)),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// ImportRequirements imports a framework definition, replacing the full
// requirement set for that framework.
func (s *ImportService) ImportRequirements(ctx context.Context, data []byte, framework models.Framework) (*ImportResult, error) {
	parsed, err := tabular.Decode(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, "import failed")
	}
	result := &ImportResult{Format: FormatRequirements}
	if err := s.reconcileRequirements(ctx, parsed.Records, framework, result); err != nil {
		return nil, err
	}
	return result, nil
}

// detectFormat sniffs the header set. A batch is the issue-tracker layout
// if and only if both "Issue Type" and "Issue key" are present.
func detectFormat(headers []string) ImportFormat {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[h] = true
	}
	if set[colIssueType] && set[colIssueKey] {
		return FormatTracker
	}
	for _, q := range models.Quarters {
		if set[quarterPrefix(string(q))+sufActualScore] {
			return FormatStandard
		}
	}
	if set[colSubcategoryID] || (set[colFunction] && set[colCategory] && !set[colAssessment]) {
		return FormatRequirements
	}
	return FormatLegacy
}

// batch accumulates reconciled entities so one import commits each store at
// most once, after every row has been processed.
type batch struct {
	assessments map[string]*models.Assessment
	order       []string
	controls    map[string]*models.Control
	evaluations map[models.EvaluationKey]*models.Evaluation
}

func newBatch() *batch {
	return &batch{
		assessments: make(map[string]*models.Assessment),
		controls:    make(map[string]*models.Control),
		evaluations: make(map[models.EvaluationKey]*models.Evaluation),
	}
}

func (s *ImportService) commit(ctx context.Context, b *batch, result *ImportResult) error {
	if len(b.assessments) > 0 {
		assessments := make([]models.Assessment, 0, len(b.assessments))
		for _, id := range b.order {
			assessments = append(assessments, *b.assessments[id])
		}
		if err := s.assessments.BulkUpsert(ctx, assessments); err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to save assessments")
		}
		result.Assessments = len(assessments)
	}
	if len(b.controls) > 0 {
		controls := make([]models.Control, 0, len(b.controls))
		for _, c := range b.controls {
			controls = append(controls, *c)
		}
		if err := s.controls.BulkUpsert(ctx, controls); err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to save controls")
		}
		result.Controls = len(controls)
	}
	if len(b.evaluations) > 0 {
		evaluations := make([]models.Evaluation, 0, len(b.evaluations))
		for _, e := range b.evaluations {
			evaluations = append(evaluations, *e)
		}
		if err := s.evaluations.BulkUpsert(ctx, evaluations); err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to save evaluations")
		}
		result.Evaluations = len(evaluations)
	}
	return nil
}

// ensureAssessment resolves an assessment by id then name, preferring
// entities already touched in this batch, and creates one when absent.
func (s *ImportService) ensureAssessment(b *batch, id, name string) *models.Assessment {
	if id != "" {
		if a, ok := b.assessments[id]; ok {
			return a
		}
	}
	for _, existingID := range b.order {
		if b.assessments[existingID].Name == name {
			return b.assessments[existingID]
		}
	}

	var found *models.Assessment
	if id != "" {
		if a, ok := s.assessments.Find(id); ok {
			found = a
		}
	}
	if found == nil && name != "" {
		if a, ok := s.assessments.FindByName(name); ok {
			found = a
		}
	}
	if found == nil {
		if id == "" {
			id = name
		}
		if name == "" {
			name = id
		}
		found = &models.Assessment{
			ID:          id,
			Name:        name,
			ScopeType:   models.ScopeControls,
			CreatedDate: nowISO(),
		}
	}
	found.LastModified = nowISO()
	b.assessments[found.ID] = found
	b.order = append(b.order, found.ID)
	return found
}

func (s *ImportService) ensureControl(b *batch, controlID string) *models.Control {
	if c, ok := b.controls[controlID]; ok {
		return c
	}
	var control *models.Control
	if existing, ok := s.controls.Find(controlID); ok {
		control = existing
	} else {
		control = &models.Control{
			ControlID:   controlID,
			Status:      models.ControlNotImplemented,
			CreatedDate: nowISO(),
		}
	}
	control.LastModified = nowISO()
	b.controls[controlID] = control
	return control
}

func addScope(assessment *models.Assessment, itemID string) {
	for _, id := range assessment.ScopeIDs {
		if id == itemID {
			return
		}
	}
	assessment.ScopeIDs = append(assessment.ScopeIDs, itemID)
	if len(assessment.ScopeIDs) == 1 && subcategoryIDShape.MatchString(itemID) {
		assessment.ScopeType = models.ScopeRequirements
	}
}

var subcategoryIDShape = regexp.MustCompile(`^[A-Z]{2}\.[A-Z]{2,3}-[0-9]{2}`)

// reconcileStandard merges standard-layout (or legacy single-period) rows.
// Rows group by the assessment-name column; a row missing it inherits the
// most recently seen non-empty name.
func (s *ImportService) reconcileStandard(ctx context.Context, records []tabular.Record, result *ImportResult, legacy bool) error {
	b := newBatch()
	carriedName := ""

	for i, row := range records {
		rowNum := i + 2 // 1-based, after the header row

		if name := row.Get(colAssessment); name != "" {
			carriedName = name
		}

		itemID := s.extractItemID(row)
		if itemID == "" {
			result.Skipped++
			continue
		}

		name := carriedName
		if name == "" {
			name = "Imported Assessment"
		}
		assessment := s.ensureAssessment(b, "", name)
		addScope(assessment, itemID)

		control := s.ensureControl(b, itemID)
		if err := s.applyControlFields(ctx, row, control); err != nil {
			return err
		}

		if legacy {
			if err := s.applyQuarter(ctx, b, row, "", assessment.ID, itemID, models.Q1, rowNum, result); err != nil {
				return err
			}
		} else {
			for _, q := range models.Quarters {
				if err := s.applyQuarter(ctx, b, row, quarterPrefix(string(q)), assessment.ID, itemID, q, rowNum, result); err != nil {
					return err
				}
			}
		}
		result.Imported++
	}

	return s.commit(ctx, b, result)
}

// extractItemID tries, in order: an explicit id column, the compliance
// requirement column, a token parsed out of the structured summary, and
// finally the row's own issue key. The first non-empty match wins.
func (s *ImportService) extractItemID(row tabular.Record) string {
	if id := row.Get(colID, "Control ID", "Requirement ID"); id != "" {
		return id
	}
	if id := row.Get(cfCompliance, "Compliance Requirement"); id != "" {
		return id
	}
	if m := wpSummaryRe.FindStringSubmatch(row.Get(colSummary)); m != nil {
		return m[2]
	}
	return row.Get(colIssueKey)
}

func (s *ImportService) applyControlFields(ctx context.Context, row tabular.Record, control *models.Control) error {
	if desc := row.Get(colImplementation); desc != "" {
		control.ImplementationDescription = sanitize.Text(desc)
	}
	if owner := row.Get(colOwner, colAssignee); owner != "" {
		id, err := s.directory.ResolveReference(ctx, owner)
		if err != nil {
			return err
		}
		control.OwnerID = id
	}
	if raw := row.Get(colStakeholders); raw != "" {
		control.StakeholderIDs = nil
		for _, token := range splitList(raw) {
			id, err := s.directory.ResolveReference(ctx, token)
			if err != nil {
				return err
			}
			if id != nil {
				control.StakeholderIDs = append(control.StakeholderIDs, *id)
			}
		}
	}
	if raw := row.Get(colLinkedRequirements); raw != "" {
		control.LinkedRequirementIDs = splitList(raw)
	}
	if status := models.ControlStatus(row.Get(colStatus)); models.ValidControlStatus(status) {
		control.Status = status
	}
	control.LastModified = nowISO()
	return nil
}

// applyQuarter builds one quarter's evaluation from prefixed columns.
// Quarters with no recorded work produce nothing.
func (s *ImportService) applyQuarter(ctx context.Context, b *batch, row tabular.Record, prefix, assessmentID, controlID string, quarter models.Quarter, rowNum int, result *ImportResult) error {
	qd, touched, err := s.buildQuarterData(ctx, row, prefix, rowNum, result)
	if err != nil {
		return err
	}
	if !touched || qd.IsEmpty() {
		return nil
	}
	key := models.EvaluationKey{AssessmentID: assessmentID, ControlID: controlID, Quarter: quarter}
	s.upsertEvaluation(b, key, qd, "")
	return nil
}

func (s *ImportService) upsertEvaluation(b *batch, key models.EvaluationKey, qd models.QuarterData, jiraKey string) {
	evaluation, ok := b.evaluations[key]
	if !ok {
		if existing, found := s.evaluations.Find(key); found {
			evaluation = existing
		} else {
			evaluation = &models.Evaluation{EvaluationKey: key, CreatedDate: nowISO()}
		}
		b.evaluations[key] = evaluation
	}
	if jiraKey == "" {
		jiraKey = evaluation.JiraKey
	}
	qd.JiraKey = jiraKey
	evaluation.QuarterData = qd
	evaluation.LastModified = nowISO()
}

// buildQuarterData assembles QuarterData from columns with the given
// prefix. touched reports whether any of the quarter's columns carried a
// value; out-of-range scores coerce to 0 and add a warning instead of
// aborting.
func (s *ImportService) buildQuarterData(ctx context.Context, row tabular.Record, prefix string, rowNum int, result *ImportResult) (models.QuarterData, bool, error) {
	qd := models.DefaultQuarter()
	touched := false

	get := func(suffix string) string {
		v := row.Get(prefix + suffix)
		if v != "" {
			touched = true
		}
		return v
	}

	qd.ActualScore = s.checkedScore(get(sufActualScore), prefix+sufActualScore, rowNum, result)
	qd.TargetScore = s.checkedScore(get(sufTargetScore), prefix+sufTargetScore, rowNum, result)
	qd.Observations = sanitize.Text(get(sufObservations))
	qd.TestProcedures = sanitize.Text(get(sufTestProcedures))
	qd.EvaluationDate = coerceDate(get(sufObservationDate))
	qd.Examine = parseYes(get(sufExamine))
	qd.Interview = parseYes(get(sufInterview))
	qd.Test = parseYes(get(sufTest))
	qd.LinkedArtifactIDs = splitList(get(sufArtifacts))

	if status := models.TestingStatus(get(sufTestingStatus)); models.ValidTestingStatus(status) {
		qd.TestingStatus = status
	}

	if auditor := get(sufAuditor); auditor != "" {
		id, err := s.directory.ResolveReference(ctx, auditor)
		if err != nil {
			return qd, touched, err
		}
		qd.AuditorID = id
	}
	if owner := get(sufRemediationOwner); owner != "" {
		id, err := s.directory.ResolveReference(ctx, owner)
		if err != nil {
			return qd, touched, err
		}
		qd.Remediation.OwnerID = id
	}
	qd.Remediation.ActionPlan = sanitize.Text(get(sufActionPlan))
	qd.Remediation.DueDate = coerceDate(get(sufDueDate))

	return qd, touched, nil
}

// checkedScore coerces a score permissively and clamps out-of-range values
// to 0, collecting a warning rather than failing the import.
func (s *ImportService) checkedScore(raw, column string, rowNum int, result *ImportResult) float64 {
	value := parseScore(raw)
	if value < 0 || value > 10 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("row %d: %s %v out of range, defaulted to 0", rowNum, column, value))
		return 0
	}
	return value
}

// reconcileTracker merges issue-tracker export rows. Epic rows define
// assessments; every other row resolves its parent Epic by key or internal
// id. Rows with an unmatched but present parent reference get a synthetic
// assessment named after the reference; rows with no parent reference at
// all are skipped.
func (s *ImportService) reconcileTracker(ctx context.Context, records []tabular.Record, result *ImportResult) error {
	b := newBatch()

	epicByKey := make(map[string]string)
	epicByID := make(map[string]string)
	for _, row := range records {
		if !strings.EqualFold(row.Get(colIssueType), issueTypeEpic) {
			continue
		}
		issueKey := row.Get(colIssueKey)
		if issueKey == "" {
			continue
		}
		name := row.Get(colSummary)
		if name == "" {
			name = issueKey
		}
		assessment := s.ensureAssessment(b, issueKey, name)
		assessment.Name = name
		epicByKey[issueKey] = assessment.ID
		if internalID := row.Get(colIssueID); internalID != "" {
			epicByID[internalID] = assessment.ID
		}
		result.Imported++
	}

	for _, row := range records {
		if strings.EqualFold(row.Get(colIssueType), issueTypeEpic) {
			continue
		}

		// Skip checks come before any batch mutation so a skipped row
		// contributes no entities, synthetic assessments included.
		itemID := s.extractItemID(row)
		if itemID == "" {
			result.Skipped++
			continue
		}
		assessmentID, parentRef := s.resolveParent(row, epicByKey, epicByID)
		if assessmentID == "" {
			if parentRef == "" {
				result.Skipped++
				continue
			}
			// Synthetic assessment derived from the dangling reference.
			assessmentID = s.ensureAssessment(b, parentRef, parentRef).ID
		}

		assessment := s.ensureAssessment(b, assessmentID, "")
		addScope(assessment, itemID)

		control := s.ensureControl(b, itemID)
		if err := s.applyControlFields(ctx, row, control); err != nil {
			return err
		}

		quarter := s.extractQuarter(row)
		qd, err := s.buildTrackerQuarter(ctx, row, result)
		if err != nil {
			return err
		}
		key := models.EvaluationKey{AssessmentID: assessment.ID, ControlID: itemID, Quarter: quarter}
		s.upsertEvaluation(b, key, qd, row.Get(colIssueKey))
		result.Imported++
	}

	return s.commit(ctx, b, result)
}

// resolveParent looks up the row's parent Epic by key then internal id and
// also returns the raw reference for synthetic-assessment fallback.
func (s *ImportService) resolveParent(row tabular.Record, epicByKey, epicByID map[string]string) (assessmentID, parentRef string) {
	if key := row.Get(colParentKey); key != "" {
		if id, ok := epicByKey[key]; ok {
			return id, key
		}
		parentRef = key
	}
	if internal := row.Get(colParentID); internal != "" {
		if id, ok := epicByID[internal]; ok {
			return id, internal
		}
		if parentRef == "" {
			parentRef = internal
		}
	}
	if raw := row.Get(colParent); raw != "" {
		if id, ok := epicByKey[raw]; ok {
			return id, raw
		}
		if id, ok := epicByID[raw]; ok {
			return id, raw
		}
		if parentRef == "" {
			parentRef = raw
		}
	}
	return "", parentRef
}

// extractQuarter prefers an explicit quarter field, then a Q<digit> suffix
// in the summary, and defaults to Q1.
func (s *ImportService) extractQuarter(row tabular.Record) models.Quarter {
	if q := models.Quarter(strings.ToUpper(row.Get(cfQuarter, "Quarter"))); models.ValidQuarter(q) {
		return q
	}
	if m := quarterSuffixRe.FindStringSubmatch(row.Get(colSummary)); m != nil {
		return models.Quarter(m[1])
	}
	return models.Q1
}

var trackerStatusMap = map[string]models.TestingStatus{
	"to do":       models.TestingNotStarted,
	"open":        models.TestingNotStarted,
	"in progress": models.TestingInProgress,
	"in review":   models.TestingSubmitted,
	"done":        models.TestingComplete,
	"closed":      models.TestingComplete,
}

func (s *ImportService) buildTrackerQuarter(ctx context.Context, row tabular.Record, result *ImportResult) (models.QuarterData, error) {
	qd := models.DefaultQuarter()

	qd.ActualScore = parseScore(row.Get(cfActualScore))
	qd.TargetScore = parseScore(row.Get(cfTargetScore))
	if qd.ActualScore < 0 || qd.ActualScore > 10 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: actual score %v out of range, defaulted to 0", row.Get(colIssueKey), qd.ActualScore))
		qd.ActualScore = 0
	}
	if qd.TargetScore < 0 || qd.TargetScore > 10 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: target score %v out of range, defaulted to 0", row.Get(colIssueKey), qd.TargetScore))
		qd.TargetScore = 0
	}

	qd.Observations = sanitize.Text(row.Get(cfObservations, "Description"))
	qd.TestProcedures = sanitize.Text(row.Get(cfTestProcedures))
	qd.EvaluationDate = coerceDate(row.Get(cfObservationDate))
	qd.LinkedArtifactIDs = splitList(row.Get(cfArtifacts))

	if status, ok := trackerStatusMap[strings.ToLower(row.Get(colStatus))]; ok {
		qd.TestingStatus = status
	} else if status := models.TestingStatus(row.Get(colStatus)); models.ValidTestingStatus(status) {
		qd.TestingStatus = status
	}

	if auditor := row.Get(colAssignee); auditor != "" {
		id, err := s.directory.ResolveReference(ctx, auditor)
		if err != nil {
			return qd, err
		}
		qd.AuditorID = id
	}
	if owner := row.Get(cfRemediationOwner); owner != "" {
		id, err := s.directory.ResolveReference(ctx, owner)
		if err != nil {
			return qd, err
		}
		qd.Remediation.OwnerID = id
	}
	qd.Remediation.ActionPlan = sanitize.Text(row.Get(cfActionPlan))
	qd.Remediation.DueDate = coerceDate(row.Get(cfDueDate))

	return qd, nil
}

// reconcileRequirements replaces a framework's requirement catalog.
func (s *ImportService) reconcileRequirements(ctx context.Context, records []tabular.Record, framework models.Framework, result *ImportResult) error {
	if framework.ID == "" {
		framework = models.Framework{ID: "nist-csf-2.0", Name: "NIST Cybersecurity Framework", Version: "2.0"}
	}
	framework.ImportedAt = time.Now().UTC()

	exampleCounts := make(map[string]int)
	requirements := make([]models.Requirement, 0, len(records))
	for _, row := range records {
		subcategoryID := row.Get(colSubcategoryID)
		id := row.Get(colID)
		if subcategoryID == "" && id != "" {
			subcategoryID = strings.Fields(id)[0]
		}
		if subcategoryID == "" {
			subcategoryID = categoryID(row.Get(colCategory))
		}
		if id == "" && subcategoryID != "" {
			exampleCounts[subcategoryID]++
			id = fmt.Sprintf("%s Ex%d", subcategoryID, exampleCounts[subcategoryID])
		}
		if id == "" {
			result.Skipped++
			continue
		}

		requirements = append(requirements, models.Requirement{
			ID:                     id,
			FrameworkID:            framework.ID,
			Function:               row.Get(colFunction),
			Category:               row.Get(colCategory),
			SubcategoryID:          subcategoryID,
			SubcategoryDescription: row.Get(colSubcategoryDesc, "Subcategory"),
			ImplementationExample:  row.Get(colExample),
		})
		result.Imported++
	}

	if err := s.requirements.ReplaceFramework(ctx, framework, requirements); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to save requirements")
	}
	result.Requirements = len(requirements)
	return nil
}
