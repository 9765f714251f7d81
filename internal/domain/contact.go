package domain

import "time"

// Contact is a single contact record owned by one user.
// TagIDs holds references into the owner's tag partition; they are resolved
// into TagRef values at the read boundary.
type Contact struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`

	TagIDs []string `json:"tag_ids,omitempty"`

	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// Touch updates the UpdatedAt timestamp.
func (c *Contact) Touch() {
	c.UpdatedAt = time.Now()
}

// TagRef is the denormalized tag shape attached to contacts on read paths.
// When tag resolution fails the Name/Color fields stay empty and ID carries
// the raw reference, so callers always get the same shape.
type TagRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// ResolvedContact pairs a contact with its resolved tag references.
type ResolvedContact struct {
	Contact
	Tags []TagRef `json:"tags"`
}

// ContactSortField identifies a sortable contact column.
type ContactSortField string

// Sortable contact fields.
const (
	SortByCreatedAt       ContactSortField = "created_at"
	SortByUpdatedAt       ContactSortField = "updated_at"
	SortByName            ContactSortField = "name"
	SortByEmail           ContactSortField = "email"
	SortByCompany         ContactSortField = "company"
	SortByLastInteraction ContactSortField = "last_interaction"
)

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
