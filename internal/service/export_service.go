package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/crypto"
	appErrors "github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/errors"
	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/export"
)

type directoryFormatter interface {
	FormatUser(id *int64) string
	List() []models.User
}

type controlExportStore interface {
	List() []models.Control
	Find(controlID string) (*models.Control, bool)
}

type assessmentExportStore interface {
	List() []models.Assessment
	Find(id string) (*models.Assessment, bool)
}

type evaluationExportStore interface {
	List() []models.Evaluation
	ListByAssessment(assessmentID string) []models.Evaluation
	Find(key models.EvaluationKey) (*models.Evaluation, bool)
}

type requirementExportStore interface {
	List() []models.Requirement
	Frameworks() []models.Framework
}

type artifactExportStore interface {
	List() []models.Artifact
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFormat selects an output rendering.
type ExportFormat string

const (
	ExportQuarterly ExportFormat = "csv"
	ExportLegacy    ExportFormat = "legacy-csv"
	ExportTracker   ExportFormat = "tracker-csv"
	ExportJSON      ExportFormat = "json"
	ExportPDF       ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to be written out.
type ExportFile struct {
	Name      string
	Data      []byte
	Encrypted bool
}

// ExportService flattens normalized entities back into tabular rows and
// structured snapshots, resolving user ids to display strings.
type ExportService struct {
	directory    directoryFormatter
	controls     controlExportStore
	assessments  assessmentExportStore
	evaluations  evaluationExportStore
	requirements requirementExportStore
	artifacts    artifactExportStore
	csv          datasetRenderer
	pdf          datasetRenderer
	logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(directory directoryFormatter, controls controlExportStore, assessments assessmentExportStore, evaluations evaluationExportStore, requirements requirementExportStore, artifacts artifactExportStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		directory:    directory,
		controls:     controls,
		assessments:  assessments,
		evaluations:  evaluations,
		requirements: requirements,
		artifacts:    artifacts,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// ExportOptions scopes and protects a generated export.
type ExportOptions struct {
	Format       ExportFormat
	AssessmentID string
	Quarter      models.Quarter
	Password     string
}

// Generate renders the requested format. A non-empty password wraps the
// payload in the authenticated envelope and adjusts the filename.
func (s *ExportService) Generate(_ context.Context, opts ExportOptions) (*ExportFile, error) {
	var (
		payload []byte
		err     error
		ext     string
	)

	switch opts.Format {
	case ExportQuarterly:
		payload, err = s.csv.Render(s.ComposeQuarterly(opts.AssessmentID))
		ext = "csv"
	case ExportLegacy:
		quarter := opts.Quarter
		if quarter == "" {
			quarter = models.Q1
		}
		if !models.ValidQuarter(quarter) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown quarter %q", quarter))
		}
		payload, err = s.csv.Render(s.ComposeLegacy(opts.AssessmentID, quarter))
		ext = "csv"
	case ExportTracker:
		payload, err = s.csv.Render(s.ComposeTracker(opts.AssessmentID))
		ext = "csv"
	case ExportJSON:
		payload, err = json.MarshalIndent(s.Snapshot(), "", "  ")
		ext = "json"
	case ExportPDF:
		payload, err = s.pdf.Render(s.ComposeSummary(opts.AssessmentID))
		ext = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", opts.Format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render export")
	}

	name := fmt.Sprintf("csf_export_%s_%s.%s", opts.Format, time.Now().UTC().Format("20060102_150405"), ext)
	file := &ExportFile{Name: name, Data: payload}

	if opts.Password != "" {
		sealed, err := crypto.Encrypt(payload, opts.Password)
		if err != nil {
			return nil, err
		}
		file.Data = sealed
		file.Name = crypto.EncryptedFilename(name)
		file.Encrypted = true
	}

	s.logger.Info("export generated",
		zap.String("format", string(opts.Format)),
		zap.String("file", file.Name),
		zap.Int("bytes", len(file.Data)),
	)
	return file, nil
}

func quarterlyHeaders() []string {
	headers := []string{colID, colAssessment, colImplementation, colOwner, colStakeholders, colStatus, colLinkedRequirements}
	for _, q := range models.Quarters {
		headers = append(headers, quarterColumns(quarterPrefix(string(q)))...)
	}
	return headers
}

func quarterColumns(prefix string) []string {
	suffixes := []string{
		sufAuditor, sufActualScore, sufTargetScore, sufObservations,
		sufObservationDate, sufTestingStatus, sufExamine, sufInterview,
		sufTest, sufTestProcedures, sufArtifacts, sufRemediationOwner,
		sufActionPlan, sufDueDate,
	}
	columns := make([]string, len(suffixes))
	for i, suffix := range suffixes {
		columns[i] = prefix + suffix
	}
	return columns
}

// ComposeQuarterly flattens every in-scope item into one row carrying all
// four quarters. Quarters with no evaluation render from the canonical
// default so untouched periods still produce the full column set.
func (s *ExportService) ComposeQuarterly(assessmentID string) export.Dataset {
	dataset := export.Dataset{Headers: quarterlyHeaders()}
	for _, assessment := range s.scopedAssessments(assessmentID) {
		for _, itemID := range s.assessmentItems(assessment) {
			row := s.controlCells(assessment, itemID)
			for _, q := range models.Quarters {
				key := models.EvaluationKey{AssessmentID: assessment.ID, ControlID: itemID, Quarter: q}
				qd := models.DefaultQuarter()
				if evaluation, ok := s.evaluations.Find(key); ok {
					qd = evaluation.QuarterData
				}
				s.fillQuarterCells(row, quarterPrefix(string(q)), qd)
			}
			dataset.Rows = append(dataset.Rows, row)
		}
	}
	return dataset
}

// ComposeLegacy flattens one quarter into the unprefixed single-period
// layout, omitting items whose quarter is empty.
func (s *ExportService) ComposeLegacy(assessmentID string, quarter models.Quarter) export.Dataset {
	headers := []string{colID, colAssessment, colImplementation, colOwner, colStakeholders, colStatus, colLinkedRequirements}
	headers = append(headers, quarterColumns("")...)
	dataset := export.Dataset{Headers: headers}

	for _, assessment := range s.scopedAssessments(assessmentID) {
		for _, itemID := range s.assessmentItems(assessment) {
			key := models.EvaluationKey{AssessmentID: assessment.ID, ControlID: itemID, Quarter: quarter}
			evaluation, ok := s.evaluations.Find(key)
			if !ok || evaluation.IsEmpty() {
				continue
			}
			row := s.controlCells(assessment, itemID)
			s.fillQuarterCells(row, "", evaluation.QuarterData)
			dataset.Rows = append(dataset.Rows, row)
		}
	}
	return dataset
}

// ComposeTracker emits one synthetic Epic row per assessment plus one work
// paper row per non-empty evaluation, linked by parent key.
func (s *ExportService) ComposeTracker(assessmentID string) export.Dataset {
	dataset := export.Dataset{Headers: []string{
		colIssueType, colIssueKey, colSummary, colParentKey, colStatus, colAssignee,
		cfCompliance, cfQuarter, cfActualScore, cfTargetScore, cfObservations,
		cfObservationDate, cfTestProcedures, cfArtifacts, cfRemediationOwner,
		cfActionPlan, cfDueDate,
	}}

	for _, assessment := range s.scopedAssessments(assessmentID) {
		dataset.Rows = append(dataset.Rows, map[string]string{
			colIssueType: issueTypeEpic,
			colIssueKey:  assessment.ID,
			colSummary:   assessment.Name,
		})

		workPaper := 0
		for _, evaluation := range s.evaluations.ListByAssessment(assessment.ID) {
			if evaluation.IsEmpty() {
				continue
			}
			workPaper++
			issueKey := evaluation.JiraKey
			if issueKey == "" {
				issueKey = fmt.Sprintf("%s-WP%d", assessment.ID, workPaper)
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				colIssueType:       issueTypeWorkPaper,
				colIssueKey:        issueKey,
				colSummary:         workPaperSummary(assessment.Name, evaluation.ControlID, evaluation.Quarter),
				colParentKey:       assessment.ID,
				colStatus:          string(evaluation.TestingStatus),
				colAssignee:        s.directory.FormatUser(evaluation.AuditorID),
				cfCompliance:       evaluation.ControlID,
				cfQuarter:          string(evaluation.Quarter),
				cfActualScore:      formatScore(evaluation.ActualScore),
				cfTargetScore:      formatScore(evaluation.TargetScore),
				cfObservations:     evaluation.Observations,
				cfObservationDate:  evaluation.EvaluationDate,
				cfTestProcedures:   evaluation.TestProcedures,
				cfArtifacts:        strings.Join(evaluation.LinkedArtifactIDs, "; "),
				cfRemediationOwner: s.directory.FormatUser(evaluation.Remediation.OwnerID),
				cfActionPlan:       evaluation.Remediation.ActionPlan,
				cfDueDate:          evaluation.Remediation.DueDate,
			})
		}
	}
	return dataset
}

// workPaperSummary renders the structured WP-<assessment>-<item>-Q<n>
// summary. The assessment segment is collapsed to an alphanumeric token so
// the summary stays parseable on re-import.
func workPaperSummary(assessmentName, itemID string, quarter models.Quarter) string {
	token := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return -1
	}, assessmentName)
	if token == "" {
		token = "Assessment"
	}
	return fmt.Sprintf("WP-%s-%s-%s", token, itemID, quarter)
}

// ComposeSummary builds the per-evaluation score table rendered to PDF.
func (s *ExportService) ComposeSummary(assessmentID string) export.Dataset {
	dataset := export.Dataset{
		Title:   "CSF Assessment Summary",
		Headers: []string{colAssessment, colID, "Quarter", sufActualScore, sufTargetScore, sufTestingStatus, sufAuditor},
	}
	for _, assessment := range s.scopedAssessments(assessmentID) {
		if assessmentID != "" {
			dataset.Title = fmt.Sprintf("CSF Assessment Summary: %s", assessment.Name)
		}
		for _, evaluation := range s.evaluations.ListByAssessment(assessment.ID) {
			if evaluation.IsEmpty() {
				continue
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				colAssessment:    assessment.Name,
				colID:            evaluation.ControlID,
				"Quarter":        string(evaluation.Quarter),
				sufActualScore:   formatScore(evaluation.ActualScore),
				sufTargetScore:   formatScore(evaluation.TargetScore),
				sufTestingStatus: string(evaluation.TestingStatus),
				sufAuditor:       s.directory.FormatUser(evaluation.AuditorID),
			})
		}
	}
	return dataset
}

// Snapshot assembles the structured full-database export.
func (s *ExportService) Snapshot() models.Snapshot {
	users := s.directory.List()
	controls := s.controls.List()
	assessments := s.assessments.List()
	evaluations := s.evaluations.List()
	requirements := s.requirements.List()
	frameworks := s.requirements.Frameworks()
	artifacts := s.artifacts.List()

	return models.Snapshot{
		SnapshotID: uuid.NewString(),
		ExportedAt: time.Now().UTC(),
		Counts: models.SnapshotCounts{
			Users:        len(users),
			Controls:     len(controls),
			Assessments:  len(assessments),
			Evaluations:  len(evaluations),
			Requirements: len(requirements),
			Frameworks:   len(frameworks),
			Artifacts:    len(artifacts),
		},
		Users:        users,
		Controls:     controls,
		Assessments:  assessments,
		Evaluations:  evaluations,
		Requirements: requirements,
		Frameworks:   frameworks,
		Artifacts:    artifacts,
	}
}

func (s *ExportService) scopedAssessments(assessmentID string) []models.Assessment {
	if assessmentID == "" {
		return s.assessments.List()
	}
	if assessment, ok := s.assessments.Find(assessmentID); ok {
		return []models.Assessment{*assessment}
	}
	return nil
}

// assessmentItems is the union of the assessment's scope ids and every
// control that has an evaluation under it, in stable order.
func (s *ExportService) assessmentItems(assessment models.Assessment) []string {
	seen := make(map[string]bool, len(assessment.ScopeIDs))
	items := make([]string, 0, len(assessment.ScopeIDs))
	for _, id := range assessment.ScopeIDs {
		if !seen[id] {
			seen[id] = true
			items = append(items, id)
		}
	}
	for _, evaluation := range s.evaluations.ListByAssessment(assessment.ID) {
		if !seen[evaluation.ControlID] {
			seen[evaluation.ControlID] = true
			items = append(items, evaluation.ControlID)
		}
	}
	return items
}

func (s *ExportService) controlCells(assessment models.Assessment, itemID string) map[string]string {
	row := map[string]string{
		colID:         itemID,
		colAssessment: assessment.Name,
	}
	control, ok := s.controls.Find(itemID)
	if !ok {
		return row
	}
	stakeholders := make([]string, 0, len(control.StakeholderIDs))
	for i := range control.StakeholderIDs {
		stakeholders = append(stakeholders, s.directory.FormatUser(&control.StakeholderIDs[i]))
	}
	row[colImplementation] = control.ImplementationDescription
	row[colOwner] = s.directory.FormatUser(control.OwnerID)
	row[colStakeholders] = strings.Join(stakeholders, "; ")
	row[colStatus] = string(control.Status)
	row[colLinkedRequirements] = strings.Join(control.LinkedRequirementIDs, "; ")
	return row
}

func (s *ExportService) fillQuarterCells(row map[string]string, prefix string, qd models.QuarterData) {
	row[prefix+sufAuditor] = s.directory.FormatUser(qd.AuditorID)
	row[prefix+sufActualScore] = formatScore(qd.ActualScore)
	row[prefix+sufTargetScore] = formatScore(qd.TargetScore)
	row[prefix+sufObservations] = qd.Observations
	row[prefix+sufObservationDate] = qd.EvaluationDate
	row[prefix+sufTestingStatus] = string(qd.TestingStatus)
	row[prefix+sufExamine] = formatYes(qd.Examine)
	row[prefix+sufInterview] = formatYes(qd.Interview)
	row[prefix+sufTest] = formatYes(qd.Test)
	row[prefix+sufTestProcedures] = qd.TestProcedures
	row[prefix+sufArtifacts] = strings.Join(qd.LinkedArtifactIDs, "; ")
	row[prefix+sufRemediationOwner] = s.directory.FormatUser(qd.Remediation.OwnerID)
	row[prefix+sufActionPlan] = qd.Remediation.ActionPlan
	row[prefix+sufDueDate] = qd.Remediation.DueDate
}
