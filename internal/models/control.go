package models

// ControlStatus tracks overall implementation progress of a control.
type ControlStatus string

const (
	ControlNotImplemented       ControlStatus = "Not Implemented"
	ControlPartiallyImplemented ControlStatus = "Partially Implemented"
	ControlImplemented          ControlStatus = "Implemented"
)

// ValidControlStatus reports whether s is one of the known statuses.
func ValidControlStatus(s ControlStatus) bool {
	switch s {
	case ControlNotImplemented, ControlPartiallyImplemented, ControlImplemented:
		return true
	}
	return false
}

// Control is a user-owned implementation record. ControlID may equal a
// Requirement ID (1:1 case) or be independently assigned as CTL-NNN.
type Control struct {
	ControlID                 string        `json:"control_id"`
	ImplementationDescription string        `json:"implementation_description"`
	OwnerID                   *int64        `json:"owner_id"`
	StakeholderIDs            []int64       `json:"stakeholder_ids"`
	LinkedRequirementIDs      []string      `json:"linked_requirement_ids"`
	Status                    ControlStatus `json:"status"`
	CreatedDate               string        `json:"created_date"`
	LastModified              string        `json:"last_modified"`
}
