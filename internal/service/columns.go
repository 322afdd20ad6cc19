package service

// Standard-layout column names, shared by the reconciler and the export
// composer so round trips stay lossless.
const (
	colID                 = "ID"
	colAssessment         = "Assessment"
	colImplementation     = "Implementation Description"
	colOwner              = "Owner"
	colStakeholders       = "Stakeholders"
	colStatus             = "Status"
	colLinkedRequirements = "Linked Requirements"
)

// Per-quarter column suffixes; the standard layout prefixes each with
// "Q1 ".."Q4 ", the legacy single-period layout uses them bare.
const (
	sufAuditor          = "Auditor"
	sufActualScore      = "Actual Score"
	sufTargetScore      = "Target Score"
	sufObservations     = "Observations"
	sufObservationDate  = "Observation Date"
	sufTestingStatus    = "Testing Status"
	sufExamine          = "Examine"
	sufInterview        = "Interview"
	sufTest             = "Test"
	sufTestProcedures   = "Test Procedures"
	sufArtifacts        = "Artifacts"
	sufRemediationOwner = "Remediation Owner"
	sufActionPlan       = "Action Plan"
	sufDueDate          = "Due Date"
)

// Issue-tracker export columns.
const (
	colIssueType = "Issue Type"
	colIssueKey  = "Issue key"
	colIssueID   = "Issue id"
	colSummary   = "Summary"
	colParent    = "Parent"
	colParentKey = "Parent key"
	colParentID  = "Parent id"
	colAssignee  = "Assignee"

	issueTypeEpic      = "Epic"
	issueTypeWorkPaper = "Work paper"

	cfCompliance       = "Custom field (Compliance Requirement)"
	cfQuarter          = "Custom field (Quarter)"
	cfActualScore      = "Custom field (Actual Score)"
	cfTargetScore      = "Custom field (Target Score)"
	cfObservations     = "Custom field (Observations)"
	cfObservationDate  = "Custom field (Observation Date)"
	cfTestProcedures   = "Custom field (Test Procedures)"
	cfArtifacts        = "Custom field (Artifacts)"
	cfRemediationOwner = "Custom field (Remediation Owner)"
	cfActionPlan       = "Custom field (Action Plan)"
	cfDueDate          = "Custom field (Due Date)"
)

// Requirement-catalog columns.
const (
	colFunction        = "Function"
	colCategory        = "Category"
	colSubcategoryID   = "Subcategory ID"
	colSubcategoryDesc = "Subcategory Description"
	colExample         = "Implementation Example"
)

func quarterPrefix(quarter string) string {
	return quarter + " "
}
