package models

// Artifact is an evidence record referenced by evaluations.
type Artifact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	URL          string `json:"url,omitempty"`
	UploadedDate string `json:"uploaded_date"`
}
