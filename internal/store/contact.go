package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/rolodexapp/rolodex-server/internal/domain"
)

// Key prefixes for contact storage.
// Contacts are partitioned by owner; the email index is owner-scoped too,
// so the uniqueness constraint matches the duplicate checks the business
// layer performs.
const (
	contactPrefix        = "contact:"            // contact:{ownerID}:{contactID} → Contact JSON
	contactByEmailPrefix = "idx:contacts:email:" // idx:contacts:email:{ownerID}:{email} → contactID
)

// normalizeEmail lowercases and trims an email for index storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateContact stores a new contact and its email index in one transaction.
// Returns ErrEmailExists if the owner already has a contact with this email.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	emailKey := newKey(contactByEmailPrefix, c.OwnerID, normalizeEmail(c.Email))

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey); err == nil {
			return ErrEmailExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		key := newKey(contactPrefix, c.OwnerID, c.ID)
		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(emailKey, []byte(c.ID))
	})
	if err != nil {
		return err
	}

	s.emit(ContactChangedEvent{OwnerID: c.OwnerID, Contact: c})
	return nil
}

// GetContact retrieves a contact by ID within the owner's partition.
func (s *Store) GetContact(ctx context.Context, ownerID, contactID string) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(contactPrefix, ownerID, contactID)
	defer releaseKey(key)

	var c domain.Contact
	err := s.get(key, &c)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// GetContactByEmail looks up a contact through the owner-scoped email index.
func (s *Store) GetContactByEmail(ctx context.Context, ownerID, email string) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emailKey := buildKey(contactByEmailPrefix, ownerID, normalizeEmail(email))
	defer releaseKey(emailKey)

	var contactID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			contactID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetContact(ctx, ownerID, contactID)
}

// ContactEmailExists reports whether the owner already has a contact with this email.
func (s *Store) ContactEmailExists(ctx context.Context, ownerID, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	emailKey := buildKey(contactByEmailPrefix, ownerID, normalizeEmail(email))
	defer releaseKey(emailKey)
	return s.exists(emailKey)
}

// UpdateContact replaces a stored contact, moving the email index if the
// email changed. Returns ErrContactNotFound if the contact is not in the
// owner's partition and ErrEmailExists when the new email collides.
func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := newKey(contactPrefix, c.OwnerID, c.ID)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}

		var old domain.Contact
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		}); err != nil {
			return err
		}

		oldEmail := normalizeEmail(old.Email)
		newEmail := normalizeEmail(c.Email)
		if oldEmail != newEmail {
			newEmailKey := newKey(contactByEmailPrefix, c.OwnerID, newEmail)
			if _, err := txn.Get(newEmailKey); err == nil {
				return ErrEmailExists
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			oldEmailKey := newKey(contactByEmailPrefix, c.OwnerID, oldEmail)
			if err := txn.Delete(oldEmailKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(newEmailKey, []byte(c.ID)); err != nil {
				return err
			}
		}

		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.emit(ContactChangedEvent{OwnerID: c.OwnerID, Contact: c})
	return nil
}

// DeleteContact removes a contact and its email index.
// Activity rows referencing the contact are left untouched; the audit trail
// outlives the entity.
func (s *Store) DeleteContact(ctx context.Context, ownerID, contactID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := newKey(contactPrefix, ownerID, contactID)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}

		var c domain.Contact
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		}); err != nil {
			return err
		}

		emailKey := newKey(contactByEmailPrefix, ownerID, normalizeEmail(c.Email))
		if err := txn.Delete(emailKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	s.emit(ContactDeletedEvent{OwnerID: ownerID, ContactID: contactID})
	return nil
}

// ListContacts returns all contacts in the owner's partition, unordered.
// Filtering, sorting, and pagination happen in the service layer.
func (s *Store) ListContacts(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(contactPrefix + ownerID + ":")
	var contacts []*domain.Contact

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c domain.Contact
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				continue
			}
			contacts = append(contacts, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

// CountContacts returns the number of contacts in the owner's partition.
func (s *Store) CountContacts(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(contactPrefix + ownerID + ":")
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
