// Package seed carries the built-in datasets installed on first run and the
// corrected observation data applied by the assessment migration chain.
package seed

import (
	"time"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
)

// DefaultFrameworkID identifies the bundled NIST CSF 2.0 catalog.
const DefaultFrameworkID = "nist-csf-2.0"

// DefaultAssessmentID identifies the baseline assessment installed for new
// databases. Migration v3 replaces exactly this assessment's observations.
const DefaultAssessmentID = "CSF-BASELINE-2025"

const seedTimestamp = "2025-01-06T00:00:00Z"

// Framework returns the bundled framework descriptor.
func Framework() models.Framework {
	importedAt, _ := time.Parse(time.RFC3339, seedTimestamp)
	return models.Framework{
		ID:         DefaultFrameworkID,
		Name:       "NIST Cybersecurity Framework",
		Version:    "2.0",
		ImportedAt: importedAt,
	}
}

// Requirements returns the bundled CSF 2.0 subcategory subset.
func Requirements() []models.Requirement {
	return []models.Requirement{
		{
			ID:                     "GV.OC-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Govern",
			Category:               "Organizational Context (GV.OC)",
			SubcategoryID:          "GV.OC-01",
			SubcategoryDescription: "The organizational mission is understood and informs cybersecurity risk management",
			ImplementationExample:  "Share the organization's mission to provide a basis for identifying risks that may impede that mission",
		},
		{
			ID:                     "GV.OC-02 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Govern",
			Category:               "Organizational Context (GV.OC)",
			SubcategoryID:          "GV.OC-02",
			SubcategoryDescription: "Internal and external stakeholders are understood, and their needs and expectations regarding cybersecurity risk management are understood and considered",
			ImplementationExample:  "Identify relevant internal stakeholders and their cybersecurity-related expectations",
		},
		{
			ID:                     "GV.RM-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Govern",
			Category:               "Risk Management Strategy (GV.RM)",
			SubcategoryID:          "GV.RM-01",
			SubcategoryDescription: "Risk management objectives are established and agreed to by organizational stakeholders",
			ImplementationExample:  "Update near-term and long-term cybersecurity risk management objectives as part of annual strategic planning",
		},
		{
			ID:                     "ID.AM-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Identify",
			Category:               "Asset Management (ID.AM)",
			SubcategoryID:          "ID.AM-01",
			SubcategoryDescription: "Inventories of hardware managed by the organization are maintained",
			ImplementationExample:  "Maintain inventories for all types of hardware, including IT, IoT, OT, and mobile devices",
		},
		{
			ID:                     "ID.RA-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Identify",
			Category:               "Risk Assessment (ID.RA)",
			SubcategoryID:          "ID.RA-01",
			SubcategoryDescription: "Vulnerabilities in assets are identified, validated, and recorded",
			ImplementationExample:  "Use vulnerability management technologies to identify unpatched and misconfigured software",
		},
		{
			ID:                     "PR.AA-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Protect",
			Category:               "Identity Management, Authentication, and Access Control (PR.AA)",
			SubcategoryID:          "PR.AA-01",
			SubcategoryDescription: "Identities and credentials for authorized users, services, and hardware are managed by the organization",
			ImplementationExample:  "Initiate requests for new access or additional access for employees, contractors, and others",
		},
		{
			ID:                     "PR.DS-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Protect",
			Category:               "Data Security (PR.DS)",
			SubcategoryID:          "PR.DS-01",
			SubcategoryDescription: "The confidentiality, integrity, and availability of data-at-rest are protected",
			ImplementationExample:  "Use encryption, digital signatures, and cryptographic hashes to protect the confidentiality and integrity of stored data",
		},
		{
			ID:                     "DE.CM-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Detect",
			Category:               "Continuous Monitoring (DE.CM)",
			SubcategoryID:          "DE.CM-01",
			SubcategoryDescription: "Networks and network services are monitored to find potentially adverse events",
			ImplementationExample:  "Monitor DNS, BGP, and other network services for adverse events",
		},
		{
			ID:                     "RS.MA-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Respond",
			Category:               "Incident Management (RS.MA)",
			SubcategoryID:          "RS.MA-01",
			SubcategoryDescription: "The incident response plan is executed in coordination with relevant third parties once an incident is declared",
			ImplementationExample:  "Detect and analyze events to determine whether an incident has occurred and apply categorization criteria",
		},
		{
			ID:                     "RC.RP-01 Ex1",
			FrameworkID:            DefaultFrameworkID,
			Function:               "Recover",
			Category:               "Incident Recovery Plan Execution (RC.RP)",
			SubcategoryID:          "RC.RP-01",
			SubcategoryDescription: "The recovery portion of the incident response plan is executed once initiated from the incident response process",
			ImplementationExample:  "Begin recovery procedures during or after incident response processes",
		},
	}
}

// Assessments returns the default assessment installed when the persisted
// collection is empty (migration v2, new-install path).
func Assessments() []models.Assessment {
	return []models.Assessment{
		{
			ID:          DefaultAssessmentID,
			Name:        "CSF 2.0 Baseline Assessment",
			Description: "Quarterly baseline assessment across the bundled CSF 2.0 scope",
			ScopeType:   models.ScopeRequirements,
			ScopeIDs: []string{
				"GV.OC-01", "GV.OC-02", "GV.RM-01",
				"ID.AM-01", "ID.RA-01",
				"PR.AA-01", "PR.DS-01",
				"DE.CM-01", "RS.MA-01", "RC.RP-01",
			},
			Observations: Observations(),
			CreatedDate:  seedTimestamp,
			LastModified: seedTimestamp,
		},
	}
}

// Observations returns the embedded quarter data shipped with the default
// assessment.
func Observations() map[string]models.ObservationRecord {
	record := func(q1 models.QuarterData) models.ObservationRecord {
		return models.ObservationRecord{
			Quarters: map[models.Quarter]models.QuarterData{
				models.Q1: q1,
				models.Q2: models.DefaultQuarter(),
				models.Q3: models.DefaultQuarter(),
				models.Q4: models.DefaultQuarter(),
			},
		}
	}

	return map[string]models.ObservationRecord{
		"GV.OC-01": record(models.QuarterData{
			ActualScore:    3,
			TargetScore:    8,
			Observations:   "Mission statement exists but is not referenced by the risk register.",
			TestProcedures: "Reviewed charter and risk register linkage.",
			TestingStatus:  models.TestingInProgress,
			Examine:        true,
			EvaluationDate: "2025-02-14",
		}),
		"PR.AA-01": record(models.QuarterData{
			ActualScore:    5,
			TargetScore:    9,
			Observations:   "Joiner and mover requests tracked; leaver deprovisioning lags by several days.",
			TestProcedures: "Sampled ten access requests from the identity platform.",
			TestingStatus:  models.TestingInProgress,
			Examine:        true,
			Interview:      true,
			EvaluationDate: "2025-02-21",
		}),
	}
}

// CorrectedObservations returns the repaired dataset applied by migration v3
// to the default assessment only. The original seed carried Q1 scores under
// the wrong subcategories.
func CorrectedObservations() map[string]models.ObservationRecord {
	fixed := Observations()
	record := fixed["GV.OC-01"]
	q1 := record.Quarters[models.Q1]
	q1.TargetScore = 7
	q1.Observations = "Mission statement exists and is cited by the risk register; linkage review pending."
	record.Quarters[models.Q1] = q1
	fixed["GV.OC-01"] = record
	return fixed
}
