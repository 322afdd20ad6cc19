package models

// ScopeType declares whether an assessment scopes requirement ids or
// control ids.
type ScopeType string

const (
	ScopeControls     ScopeType = "controls"
	ScopeRequirements ScopeType = "requirements"
)

// ObservationRecord is the deprecated embedded precursor of the normalized
// Evaluation entity, retained for backward-compatible persistence only.
type ObservationRecord struct {
	Quarters map[Quarter]QuarterData `json:"quarters"`
}

// Assessment groups in-scope item ids for a named audit period. It does not
// own its evaluations; they reference it by id and are cascade-deleted
// explicitly when the assessment is removed.
type Assessment struct {
	ID           string                       `json:"id"`
	Name         string                       `json:"name"`
	Description  string                       `json:"description,omitempty"`
	ScopeType    ScopeType                    `json:"scope_type"`
	ScopeIDs     []string                     `json:"scope_ids"`
	Observations map[string]ObservationRecord `json:"observations,omitempty"`
	CreatedDate  string                       `json:"created_date"`
	LastModified string                       `json:"last_modified"`
}
