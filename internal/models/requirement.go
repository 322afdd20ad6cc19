package models

import "time"

// Requirement is read-only reference data imported from a framework
// definition. Re-importing a framework replaces its full requirement set.
type Requirement struct {
	ID                     string `json:"id"`
	FrameworkID            string `json:"framework_id"`
	Function               string `json:"function"`
	Category               string `json:"category"`
	SubcategoryID          string `json:"subcategory_id"`
	SubcategoryDescription string `json:"subcategory_description"`
	ImplementationExample  string `json:"implementation_example"`
}

// Framework identifies one imported requirement catalog.
type Framework struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	ImportedAt time.Time `json:"imported_at"`
}
