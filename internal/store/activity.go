package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/rolodexapp/rolodex-server/internal/domain"
)

// Activity storage key prefixes.
// The owner index embeds an inverted timestamp so forward iteration yields
// rows newest-first without reverse iteration.
const (
	activityPrefix         = "activity:"           // activity:{id} → Activity JSON
	activityIdxOwnerPrefix = "idx:activity:owner:" // idx:activity:owner:{ownerID}:{inverted_ts}:{id} → ""
)

// invertedTimestamp returns a string that sorts in descending order.
// Uses MaxInt64 - UnixNano to ensure newest timestamps come first during forward iteration.
func invertedTimestamp(t time.Time) string {
	inverted := math.MaxInt64 - t.UnixNano()
	return fmt.Sprintf("%019d", inverted)
}

// ActivityFilter narrows an activity listing.
type ActivityFilter struct {
	// Action, if non-empty, requires an exact action match.
	Action string
	// Since, if non-zero, excludes rows older than this instant.
	Since time.Time
}

// CreateActivity appends an audit row with its owner index in one transaction.
// Rows are never updated or deleted afterwards.
func (s *Store) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshaling activity: %w", err)
	}

	invertedTS := invertedTimestamp(activity.CreatedAt)

	err = s.db.Update(func(txn *badger.Txn) error {
		primaryKey := []byte(activityPrefix + activity.ID)
		if err := txn.Set(primaryKey, data); err != nil {
			return fmt.Errorf("setting primary key: %w", err)
		}

		ownerKey := []byte(activityIdxOwnerPrefix + activity.OwnerID + ":" + invertedTS + ":" + activity.ID)
		if err := txn.Set(ownerKey, []byte{}); err != nil {
			return fmt.Errorf("setting owner index: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ActivityRecordedEvent{OwnerID: activity.OwnerID, Activity: activity})
	return nil
}

// GetActivity retrieves a single activity by ID.
func (s *Store) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var activity domain.Activity
	err := s.get([]byte(activityPrefix+activityID), &activity)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting activity %s: %w", activityID, err)
	}

	return &activity, nil
}

// ListActivities returns one page of the owner's activities, newest first,
// along with the total number of rows matching the filter. Offset pagination:
// the page is items [skip, skip+pageSize) of the filtered sequence.
func (s *Store) ListActivities(ctx context.Context, ownerID string, filter ActivityFilter, params PaginationParams) ([]*domain.Activity, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	params.Validate()
	skip := params.Skip()

	items := make([]*domain.Activity, 0, params.PageSize)
	total := 0

	indexPrefix := []byte(activityIdxOwnerPrefix + ownerID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			key := string(it.Item().Key())
			activityID := extractActivityIDFromOwnerKey(key, ownerID)
			if activityID == "" {
				continue
			}

			activity, err := s.getActivityInTxn(txn, activityID)
			if err != nil {
				continue
			}

			if !filter.Since.IsZero() && activity.CreatedAt.Before(filter.Since) {
				// Index iterates newest-first; everything past here is older.
				break
			}
			if filter.Action != "" && activity.Action != filter.Action {
				continue
			}

			if total >= skip && len(items) < params.PageSize {
				items = append(items, activity)
			}
			total++
		}

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetching activities: %w", err)
	}

	return items, total, nil
}

// GetRecentActivities returns up to limit of the owner's newest activities.
func (s *Store) GetRecentActivities(ctx context.Context, ownerID string, limit int) ([]*domain.Activity, error) {
	items, _, err := s.ListActivities(ctx, ownerID, ActivityFilter{}, PaginationParams{Page: 1, PageSize: limit})
	return items, err
}

// CountActivities returns the total number of rows in the owner's partition.
func (s *Store) CountActivities(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	indexPrefix := []byte(activityIdxOwnerPrefix + ownerID + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// GetActivitiesSince returns all of the owner's activities at or after the
// given instant, newest first. Used by the dashboard timeline.
func (s *Store) GetActivitiesSince(ctx context.Context, ownerID string, since time.Time) ([]*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var activities []*domain.Activity
	indexPrefix := []byte(activityIdxOwnerPrefix + ownerID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			key := string(it.Item().Key())
			activityID := extractActivityIDFromOwnerKey(key, ownerID)
			if activityID == "" {
				continue
			}

			activity, err := s.getActivityInTxn(txn, activityID)
			if err != nil {
				continue
			}
			if activity.CreatedAt.Before(since) {
				break
			}
			activities = append(activities, activity)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching activities since %s: %w", since.Format(time.RFC3339), err)
	}

	return activities, nil
}

// getActivityInTxn retrieves an activity within an existing transaction.
func (s *Store) getActivityInTxn(txn *badger.Txn, activityID string) (*domain.Activity, error) {
	item, err := txn.Get([]byte(activityPrefix + activityID))
	if err != nil {
		return nil, err
	}

	var activity domain.Activity
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &activity)
	})
	if err != nil {
		return nil, err
	}

	return &activity, nil
}

// extractActivityIDFromOwnerKey extracts the activity ID from an owner index key.
// Key format: idx:activity:owner:{ownerID}:{inverted_ts}:{id}.
func extractActivityIDFromOwnerKey(key, ownerID string) string {
	prefix := activityIdxOwnerPrefix + ownerID + ":"
	if len(key) <= len(prefix)+20 { // 19 digits + colon
		return ""
	}
	return key[len(prefix)+20:]
}
