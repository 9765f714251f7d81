package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/id"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

func newTestActivity(ownerID, action, entityName string, at time.Time) *domain.Activity {
	return &domain.Activity{
		ID:         id.MustGenerate(id.PrefixActivity),
		OwnerID:    ownerID,
		Action:     action,
		EntityType: domain.EntityContact,
		EntityID:   "ct_test",
		EntityName: entityName,
		CreatedAt:  at,
	}
}

func TestActivity_Create_And_Get(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	a := newTestActivity("user-1", domain.ActionContactCreated, "Ada Lovelace", time.Now())
	require.NoError(t, s.CreateActivity(ctx, a))

	got, err := s.GetActivity(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionContactCreated, got.Action)
	assert.Equal(t, "Ada Lovelace", got.EntityName)
}

func TestActivity_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetActivity(context.Background(), "act_missing")
	assert.ErrorIs(t, err, store.ErrActivityNotFound)
}

func TestActivity_List_NewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		a := newTestActivity("user-1", domain.ActionContactUpdated, "Contact", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.CreateActivity(ctx, a))
	}

	items, total, err := s.ListActivities(ctx, "user-1", store.ActivityFilter{}, store.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 5)

	for i := 1; i < len(items); i++ {
		assert.True(t, !items[i].CreatedAt.After(items[i-1].CreatedAt),
			"items must be in descending timestamp order")
	}
}

func TestActivity_List_Pagination(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		a := newTestActivity("user-1", domain.ActionContactCreated, "Contact", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.CreateActivity(ctx, a))
	}

	page1, total, err := s.ListActivities(ctx, "user-1", store.ActivityFilter{}, store.PaginationParams{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page1, 3)

	page3, total, err := s.ListActivities(ctx, "user-1", store.ActivityFilter{}, store.PaginationParams{Page: 3, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page3, 1)

	// Page past the end is empty, not an error.
	page4, total, err := s.ListActivities(ctx, "user-1", store.ActivityFilter{}, store.PaginationParams{Page: 4, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Empty(t, page4)
}

func TestActivity_List_FilterByAction(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactCreated, "A", base)))
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactDeleted, "B", base.Add(time.Minute))))
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactCreated, "C", base.Add(2*time.Minute))))

	items, total, err := s.ListActivities(ctx, "user-1",
		store.ActivityFilter{Action: domain.ActionContactCreated},
		store.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "C", items[0].EntityName)
	assert.Equal(t, "A", items[1].EntityName)
}

func TestActivity_List_FilterSince(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactCreated, "Old", now.Add(-48*time.Hour))))
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactCreated, "Recent", now.Add(-time.Hour))))

	items, total, err := s.ListActivities(ctx, "user-1",
		store.ActivityFilter{Since: now.Add(-24 * time.Hour)},
		store.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Recent", items[0].EntityName)
}

func TestActivity_List_OwnerScoped(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactCreated, "Mine", time.Now())))
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-2", domain.ActionContactCreated, "Theirs", time.Now())))

	items, total, err := s.ListActivities(ctx, "user-1", store.ActivityFilter{}, store.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Mine", items[0].EntityName)
}

func TestActivity_GetRecent_Limit(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		a := newTestActivity("user-1", domain.ActionContactUpdated, "Contact", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.CreateActivity(ctx, a))
	}

	items, err := s.GetRecentActivities(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestActivity_GetActivitiesSince(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactCreated, "Old", now.Add(-10*24*time.Hour))))
	require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionContactCreated, "New", now.Add(-2*24*time.Hour))))

	items, err := s.GetActivitiesSince(ctx, "user-1", now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "New", items[0].EntityName)
}

func TestActivity_Count(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.CreateActivity(ctx, newTestActivity("user-1", domain.ActionTagCreated, "client", time.Now())))
	}

	count, err := s.CountActivities(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
