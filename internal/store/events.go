package store

import "github.com/rolodexapp/rolodex-server/internal/domain"

// Event types broadcast through the EventEmitter. The push collaborator
// decides how (and whether) to deliver them; the store only publishes.

// ContactChangedEvent is emitted on contact create/update.
type ContactChangedEvent struct {
	OwnerID string          `json:"owner_id"`
	Contact *domain.Contact `json:"contact"`
}

// ContactDeletedEvent is emitted when a contact is removed.
type ContactDeletedEvent struct {
	OwnerID   string `json:"owner_id"`
	ContactID string `json:"contact_id"`
}

// TagChangedEvent is emitted on tag create/update, including lazy creation
// through resolve-or-create.
type TagChangedEvent struct {
	OwnerID string      `json:"owner_id"`
	Tag     *domain.Tag `json:"tag"`
}

// TagDeletedEvent is emitted when a tag is removed.
type TagDeletedEvent struct {
	OwnerID string `json:"owner_id"`
	TagID   string `json:"tag_id"`
}

// ActivityRecordedEvent is emitted for every appended audit row.
type ActivityRecordedEvent struct {
	OwnerID  string           `json:"owner_id"`
	Activity *domain.Activity `json:"activity"`
}
