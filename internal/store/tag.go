package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/id"
)

// Key prefixes for tag storage.
// Tags are owner-scoped; the name index is byte-exact within the partition.
const (
	tagPrefix       = "tag:"           // tag:{ownerID}:{tagID} → Tag JSON
	tagByNamePrefix = "idx:tags:name:" // idx:tags:name:{ownerID}:{name} → tagID
)

// resolveRetries bounds retry attempts when Badger reports a transaction
// conflict between concurrent resolve-or-create calls on the same name.
const resolveRetries = 3

// TagOrder selects an ordering for ListTags.
type TagOrder int

// Tag list orderings.
const (
	// TagOrderUsageDesc sorts by usage count descending (dashboard, browse).
	TagOrderUsageDesc TagOrder = iota
	// TagOrderNameAsc sorts by name ascending (filter facets on listings).
	TagOrderNameAsc
)

// ResolveOrCreateTag atomically finds a tag by exact name in the owner's
// partition or creates it with the default color, incrementing the usage
// count by one in both branches. The lookup, creation, and increment run in
// a single transaction so concurrent callers can never mint duplicate tags;
// on a transaction conflict the whole operation is retried.
//
// Returns the tag and whether it was created by this call.
func (s *Store) ResolveOrCreateTag(ctx context.Context, ownerID, name string) (*domain.Tag, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var (
		tag     *domain.Tag
		created bool
		err     error
	)

	for attempt := 0; attempt < resolveRetries; attempt++ {
		tag, created, err = s.resolveOrCreateTagOnce(ownerID, name)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, false, err
	}

	s.emit(TagChangedEvent{OwnerID: ownerID, Tag: tag})
	return tag, created, nil
}

// resolveOrCreateTagOnce performs one transactional find-or-create-and-increment.
func (s *Store) resolveOrCreateTagOnce(ownerID, name string) (*domain.Tag, bool, error) {
	var (
		tag     domain.Tag
		created bool
	)

	err := s.db.Update(func(txn *badger.Txn) error {
		tag = domain.Tag{}
		created = false

		nameKey := newKey(tagByNamePrefix, ownerID, name)

		item, err := txn.Get(nameKey)
		switch {
		case err == nil:
			// Existing tag: load and increment in place.
			var tagID string
			if err := item.Value(func(val []byte) error {
				tagID = string(val)
				return nil
			}); err != nil {
				return err
			}

			key := newKey(tagPrefix, ownerID, tagID)
			tagItem, err := txn.Get(key)
			if err != nil {
				return err
			}
			if err := tagItem.Value(func(val []byte) error {
				return json.Unmarshal(val, &tag)
			}); err != nil {
				return err
			}

			tag.UsageCount++
			tag.Touch()

			data, err := json.Marshal(&tag)
			if err != nil {
				return err
			}
			return txn.Set(key, data)

		case errors.Is(err, badger.ErrKeyNotFound):
			// Absent: create with the default color, already counted once.
			tagID, err := id.Generate(id.PrefixTag)
			if err != nil {
				return err
			}

			now := time.Now()
			tag = domain.Tag{
				ID:         tagID,
				OwnerID:    ownerID,
				Name:       name,
				Color:      domain.DefaultTagColor,
				UsageCount: 1,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			created = true

			data, err := json.Marshal(&tag)
			if err != nil {
				return err
			}

			key := newKey(tagPrefix, ownerID, tagID)
			if err := txn.Set(key, data); err != nil {
				return err
			}
			return txn.Set(nameKey, []byte(tagID))

		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}

	return &tag, created, nil
}

// CreateTag explicitly creates a tag with usage count zero.
// Returns ErrTagExists if the owner already has a tag with this name.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		nameKey := newKey(tagByNamePrefix, t.OwnerID, t.Name)
		if _, err := txn.Get(nameKey); err == nil {
			return ErrTagExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		key := newKey(tagPrefix, t.OwnerID, t.ID)
		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(nameKey, []byte(t.ID))
	})
	if err != nil {
		return err
	}

	s.emit(TagChangedEvent{OwnerID: t.OwnerID, Tag: t})
	return nil
}

// GetTag retrieves a tag by ID within the owner's partition.
func (s *Store) GetTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(tagPrefix, ownerID, tagID)
	defer releaseKey(key)

	var t domain.Tag
	err := s.get(key, &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// GetTagByName retrieves a tag by exact name within the owner's partition.
func (s *Store) GetTagByName(ctx context.Context, ownerID, name string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nameKey := buildKey(tagByNamePrefix, ownerID, name)
	defer releaseKey(nameKey)

	var tagID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetTag(ctx, ownerID, tagID)
}

// UpdateTag replaces a stored tag, moving the name index if the name changed.
// Returns ErrTagNotFound on ownership miss and ErrTagExists when the new
// name collides with another tag of the same owner.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := newKey(tagPrefix, t.OwnerID, t.ID)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}

		var old domain.Tag
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		}); err != nil {
			return err
		}

		if old.Name != t.Name {
			newNameKey := newKey(tagByNamePrefix, t.OwnerID, t.Name)
			if _, err := txn.Get(newNameKey); err == nil {
				return ErrTagExists
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			oldNameKey := newKey(tagByNamePrefix, t.OwnerID, old.Name)
			if err := txn.Delete(oldNameKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(newNameKey, []byte(t.ID)); err != nil {
				return err
			}
		}

		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.emit(TagChangedEvent{OwnerID: t.OwnerID, Tag: t})
	return nil
}

// DeleteTag removes a tag and its name index.
// Contacts still referencing the tag keep their dangling references; the
// read path drops references it cannot resolve.
func (s *Store) DeleteTag(ctx context.Context, ownerID, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := newKey(tagPrefix, ownerID, tagID)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}

		var t domain.Tag
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		}); err != nil {
			return err
		}

		nameKey := newKey(tagByNamePrefix, ownerID, t.Name)
		if err := txn.Delete(nameKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	s.emit(TagDeletedEvent{OwnerID: ownerID, TagID: tagID})
	return nil
}

// ListTags returns all tags in the owner's partition in the requested order.
func (s *Store) ListTags(ctx context.Context, ownerID string, order TagOrder) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(tagPrefix + ownerID + ":")
	var tags []*domain.Tag

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t domain.Tag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				continue
			}
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch order {
	case TagOrderNameAsc:
		sort.Slice(tags, func(i, j int) bool {
			return tags[i].Name < tags[j].Name
		})
	default:
		// Usage descending, name ascending for stability.
		sort.Slice(tags, func(i, j int) bool {
			if tags[i].UsageCount != tags[j].UsageCount {
				return tags[i].UsageCount > tags[j].UsageCount
			}
			return tags[i].Name < tags[j].Name
		})
	}

	return tags, nil
}

// GetTagsByIDs resolves a set of tag IDs in the owner's partition.
// Missing tags are skipped, not errors; dangling references from deleted
// tags are expected.
func (s *Store) GetTagsByIDs(ctx context.Context, ownerID string, tagIDs []string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		t, err := s.GetTag(ctx, ownerID, tagID)
		if errors.Is(err, ErrTagNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	return tags, nil
}

// CountTags returns the number of tags in the owner's partition.
func (s *Store) CountTags(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(tagPrefix + ownerID + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}
