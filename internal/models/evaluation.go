package models

import (
	"fmt"
	"sort"
	"strings"
)

// Quarter names one audit period within a cycle.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// Quarters lists all quarters in order.
var Quarters = []Quarter{Q1, Q2, Q3, Q4}

// ValidQuarter reports whether q names a known quarter.
func ValidQuarter(q Quarter) bool {
	switch q {
	case Q1, Q2, Q3, Q4:
		return true
	}
	return false
}

// TestingStatus tracks the state of one quarterly evaluation.
type TestingStatus string

const (
	TestingNotStarted TestingStatus = "Not Started"
	TestingInProgress TestingStatus = "In Progress"
	TestingSubmitted  TestingStatus = "Submitted"
	TestingComplete   TestingStatus = "Complete"
)

// ValidTestingStatus reports whether s is one of the known statuses.
func ValidTestingStatus(s TestingStatus) bool {
	switch s {
	case TestingNotStarted, TestingInProgress, TestingSubmitted, TestingComplete:
		return true
	}
	return false
}

// Remediation captures the follow-up plan attached to an evaluation.
type Remediation struct {
	OwnerID    *int64 `json:"owner_id"`
	ActionPlan string `json:"action_plan"`
	DueDate    string `json:"due_date"`
}

// QuarterData holds the point-in-time fields of one quarterly assessment.
// Every read path that needs a default quarter must go through
// DefaultQuarter rather than inlining literals.
type QuarterData struct {
	AuditorID         *int64        `json:"auditor_id"`
	ActualScore       float64       `json:"actual_score"`
	TargetScore       float64       `json:"target_score"`
	Observations      string        `json:"observations"`
	TestProcedures    string        `json:"test_procedures"`
	TestingStatus     TestingStatus `json:"testing_status"`
	Examine           bool          `json:"examine"`
	Interview         bool          `json:"interview"`
	Test              bool          `json:"test"`
	EvaluationDate    string        `json:"evaluation_date"`
	LinkedArtifactIDs []string      `json:"linked_artifact_ids"`
	Remediation       Remediation   `json:"remediation"`
	JiraKey           string        `json:"jira_key,omitempty"`
}

// DefaultQuarter constructs the canonical empty quarter record.
func DefaultQuarter() QuarterData {
	return QuarterData{TestingStatus: TestingNotStarted}
}

// IsEmpty reports whether the quarter holds no recorded work: not started,
// no observations, zero actual score. Empty quarters are excluded from
// exports and migration unless explicitly created.
func (q QuarterData) IsEmpty() bool {
	return q.TestingStatus == TestingNotStarted && q.Observations == "" && q.ActualScore == 0
}

// EvaluationKey is the composite identity of an evaluation. Identity is the
// struct itself; the EVAL-... string form exists only for display and
// legacy interchange.
type EvaluationKey struct {
	AssessmentID string  `json:"assessment_id"`
	ControlID    string  `json:"control_id"`
	Quarter      Quarter `json:"quarter"`
}

// Evaluation is one quarterly assessment of one control within one
// assessment cycle.
type Evaluation struct {
	EvaluationKey
	QuarterData
	CreatedDate  string `json:"created_date"`
	LastModified string `json:"last_modified"`
}

// FormatEvaluationID renders the legacy composite id string.
func FormatEvaluationID(key EvaluationKey) string {
	return fmt.Sprintf("EVAL-%s-%s-%s", key.AssessmentID, key.ControlID, key.Quarter)
}

// ParseEvaluationID recovers the composite key from a legacy id string.
// Because both assessment and control ids may contain hyphens, the parser
// first tries longest-prefix resolution against the known assessment ids;
// only when none matches does it fall back to the legacy rule of treating
// the last two hyphen-delimited segments as control id and quarter.
func ParseEvaluationID(id string, knownAssessmentIDs []string) (EvaluationKey, error) {
	rest, ok := strings.CutPrefix(id, "EVAL-")
	if !ok {
		return EvaluationKey{}, fmt.Errorf("not an evaluation id: %q", id)
	}

	sorted := append([]string(nil), knownAssessmentIDs...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, aid := range sorted {
		prefix := aid + "-"
		if !strings.HasPrefix(rest, prefix) {
			continue
		}
		tail := rest[len(prefix):]
		cut := strings.LastIndex(tail, "-Q")
		if cut <= 0 || cut+2 >= len(tail) {
			continue
		}
		quarter := Quarter(tail[cut+1:])
		if !ValidQuarter(quarter) {
			continue
		}
		return EvaluationKey{AssessmentID: aid, ControlID: tail[:cut], Quarter: quarter}, nil
	}

	if segs := strings.Split(rest, "-"); len(segs) >= 3 {
		quarter := Quarter(segs[len(segs)-1])
		if ValidQuarter(quarter) {
			return EvaluationKey{
				AssessmentID: strings.Join(segs[:len(segs)-2], "-"),
				ControlID:    segs[len(segs)-2],
				Quarter:      quarter,
			}, nil
		}
	}

	return EvaluationKey{}, fmt.Errorf("unparseable evaluation id: %q", id)
}
