package domain

import "time"

// EntityType identifies what kind of entity an activity row refers to.
type EntityType string

// Entity types referenced by activity rows.
const (
	EntityContact EntityType = "contact"
	EntityTag     EntityType = "tag"
)

// Well-known activity actions. Action is free text on the wire; these are the
// verbs this server writes.
const (
	ActionContactCreated  = "Created contact"
	ActionContactUpdated  = "Updated contact"
	ActionContactDeleted  = "Deleted contact"
	ActionContactImported = "Imported contacts"
	ActionContactExported = "Exported contacts"
	ActionTagCreated      = "Created tag"
	ActionTagUpdated      = "Updated tag"
	ActionTagDeleted      = "Deleted tag"
)

// Activity is one append-only audit row describing a single logical mutation.
// Rows are immutable and survive deletion of the entity they reference;
// EntityName snapshots the name at the time of the action so history stays
// readable after renames and deletes.
type Activity struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Action     string     `json:"action"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id,omitempty"`
	EntityName string     `json:"entity_name"`
	CreatedAt  time.Time  `json:"created_at"`
}
