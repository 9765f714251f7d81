package domain

import "time"

// DefaultTagColor is assigned when a tag is created without an explicit color,
// including every tag minted lazily through resolve-or-create.
const DefaultTagColor = "#3B82F6"

// Tag is an owner-scoped label for contacts.
// Name is unique per owner with byte-exact matching — no normalization.
//
// UsageCount is a monotonic counter of how many times the tag name was
// asserted on a contact write. It is incremented by resolve-or-create and
// never decremented, so it is not a live reference count; contact deletion
// leaves it untouched.
type Tag struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	UsageCount int       `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// Ref returns the denormalized shape attached to contacts on read paths.
func (t *Tag) Ref() TagRef {
	return TagRef{ID: t.ID, Name: t.Name, Color: t.Color}
}
