package models

import "time"

// Document is an opaque content reference bound to an owner. The content
// itself lives elsewhere; only the hash travels through this service.
type Document struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Size        int64     `json:"size"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MissingFields lists required fields that are empty, in declaration order.
func (d Document) MissingFields() []string {
	var missing []string
	if d.Owner == "" {
		missing = append(missing, "owner")
	}
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Type == "" {
		missing = append(missing, "type")
	}
	if d.ContentHash == "" {
		missing = append(missing, "contentHash")
	}
	return missing
}
