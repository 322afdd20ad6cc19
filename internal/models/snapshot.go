package models

import "time"

// SnapshotCounts summarises entity totals inside a database snapshot.
type SnapshotCounts struct {
	Users        int `json:"users"`
	Controls     int `json:"controls"`
	Assessments  int `json:"assessments"`
	Evaluations  int `json:"evaluations"`
	Requirements int `json:"requirements"`
	Frameworks   int `json:"frameworks"`
	Artifacts    int `json:"artifacts"`
}

// Snapshot is the structured full-database export.
type Snapshot struct {
	SnapshotID   string         `json:"snapshot_id"`
	ExportedAt   time.Time      `json:"exported_at"`
	Counts       SnapshotCounts `json:"counts"`
	Users        []User         `json:"users"`
	Controls     []Control      `json:"controls"`
	Assessments  []Assessment   `json:"assessments"`
	Evaluations  []Evaluation   `json:"evaluations"`
	Requirements []Requirement  `json:"requirements"`
	Frameworks   []Framework    `json:"frameworks"`
	Artifacts    []Artifact     `json:"artifacts"`
}
