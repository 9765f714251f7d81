package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/service"
)

func createContact(t *testing.T, svc *testServices, ownerID, name, email string, tagNames ...string) *domain.ResolvedContact {
	t.Helper()
	c, err := svc.Contacts.Create(context.Background(), ownerID, service.CreateContactRequest{
		Name:     name,
		Email:    email,
		TagNames: tagNames,
	})
	require.NoError(t, err)
	return c
}

func TestContactService_Create_ResolvesTags(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	c := createContact(t, svc, "user-1", "Ada Lovelace", "ada@example.com", "client", "vip", "client")

	// Duplicate names collapse to one reference.
	require.Len(t, c.Tags, 2)
	assert.Equal(t, "client", c.Tags[0].Name)
	assert.Equal(t, "vip", c.Tags[1].Name)

	tags, err := svc.Tags.List(ctx, "user-1", service.TagListByName)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	// "client" was asserted twice in one request.
	assert.Equal(t, "client", tags[0].Name)
	assert.Equal(t, 2, tags[0].UsageCount)
}

func TestContactService_Create_MissingFields(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.Contacts.Create(ctx, "user-1", service.CreateContactRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = svc.Contacts.Create(ctx, "user-1", service.CreateContactRequest{Name: "Ada"})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestContactService_Create_DuplicateEmail(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	createContact(t, svc, "user-1", "Ada", "ada@example.com")

	_, err := svc.Contacts.Create(ctx, "user-1", service.CreateContactRequest{
		Name:  "Ada Again",
		Email: "ada@example.com",
	})
	assert.ErrorIs(t, err, errors.ErrConflict)

	// A different owner can hold the same email.
	_, err = svc.Contacts.Create(ctx, "user-2", service.CreateContactRequest{
		Name:  "Their Ada",
		Email: "ada@example.com",
	})
	assert.NoError(t, err)
}

func TestContactService_Create_AppendsActivity(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	createContact(t, svc, "user-1", "Ada Lovelace", "ada@example.com")

	page, err := svc.Activity.List(ctx, "user-1", service.ListActivitiesRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.ActionContactCreated, page.Items[0].Action)
	assert.Equal(t, "Ada Lovelace", page.Items[0].EntityName)
}

func TestContactService_Update_ReplacesTagSet(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	c := createContact(t, svc, "user-1", "Ada", "ada@example.com", "alpha", "beta")

	updated, err := svc.Contacts.Update(ctx, "user-1", c.ID, service.UpdateContactRequest{
		TagNames: []string{"beta", "gamma"},
	})
	require.NoError(t, err)

	// Replacement, not union: {alpha,beta} -> {beta,gamma}.
	names := make([]string, 0, len(updated.Tags))
	for _, ref := range updated.Tags {
		names = append(names, ref.Name)
	}
	assert.ElementsMatch(t, []string{"beta", "gamma"}, names)

	// Re-asserting "beta" bumped its counter again.
	tag, err := svc.Store.GetTagByName(ctx, "user-1", "beta")
	require.NoError(t, err)
	assert.Equal(t, 2, tag.UsageCount)
}

func TestContactService_Update_SnapshotsPreviousName(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	c := createContact(t, svc, "user-1", "Ada", "ada@example.com")

	newName := "Ada King"
	_, err := svc.Contacts.Update(ctx, "user-1", c.ID, service.UpdateContactRequest{Name: &newName})
	require.NoError(t, err)

	page, err := svc.Activity.List(ctx, "user-1", service.ListActivitiesRequest{
		Action: domain.ActionContactUpdated,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	// The audit row carries the name from before the update.
	assert.Equal(t, "Ada", page.Items[0].EntityName)
}

func TestContactService_Update_NotFound(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	c := createContact(t, svc, "user-1", "Ada", "ada@example.com")

	_, err := svc.Contacts.Update(ctx, "user-2", c.ID, service.UpdateContactRequest{})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestContactService_Delete_KeepsTagCountsAndAudit(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	c := createContact(t, svc, "user-1", "Ada", "ada@example.com", "client")
	require.NoError(t, svc.Contacts.Delete(ctx, "user-1", c.ID))

	// Monotonic counter survives deletion.
	tag, err := svc.Store.GetTagByName(ctx, "user-1", "client")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.UsageCount)

	// Audit rows for the contact survive too.
	page, err := svc.Activity.List(ctx, "user-1", service.ListActivitiesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, domain.ActionContactDeleted, page.Items[0].Action)
	assert.Equal(t, "Ada", page.Items[0].EntityName)
}

func TestContactService_Delete_NotFound(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	err := svc.Contacts.Delete(context.Background(), "user-1", "ct-missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestContactService_List_Search(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	createContact(t, svc, "user-1", "Ada Lovelace", "ada@example.com")
	createContact(t, svc, "user-1", "Grace Hopper", "grace@acme.com")
	c3, err := svc.Contacts.Create(ctx, "user-1", service.CreateContactRequest{
		Name:    "Alan Turing",
		Email:   "alan@example.com",
		Company: "Acme Corp",
	})
	require.NoError(t, err)

	listing, err := svc.Contacts.List(ctx, "user-1", service.ListContactsRequest{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, listing.Contacts, 2)

	ids := []string{listing.Contacts[0].ID, listing.Contacts[1].ID}
	assert.Contains(t, ids, c3.ID)
}

func TestContactService_List_TagFilter(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	createContact(t, svc, "user-1", "Ada", "ada@example.com", "client")
	createContact(t, svc, "user-1", "Grace", "grace@example.com", "vendor")

	listing, err := svc.Contacts.List(ctx, "user-1", service.ListContactsRequest{TagFilter: "client"})
	require.NoError(t, err)
	require.Len(t, listing.Contacts, 1)
	assert.Equal(t, "Ada", listing.Contacts[0].Name)

	// An unknown tag name yields zero results, not an error.
	listing, err = svc.Contacts.List(ctx, "user-1", service.ListContactsRequest{TagFilter: "nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, listing.Contacts)
	assert.Equal(t, 0, listing.Total)
}

func TestContactService_List_AvailableTagsIgnoreFilter(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	createContact(t, svc, "user-1", "Ada", "ada@example.com", "client")
	createContact(t, svc, "user-1", "Grace", "grace@example.com", "vendor")

	listing, err := svc.Contacts.List(ctx, "user-1", service.ListContactsRequest{TagFilter: "client"})
	require.NoError(t, err)

	// Facet list is the full owner tag set, name ascending.
	require.Len(t, listing.AvailableTags, 2)
	assert.Equal(t, "client", listing.AvailableTags[0].Name)
	assert.Equal(t, "vendor", listing.AvailableTags[1].Name)
}

func TestContactService_List_SortAndPaginate(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	createContact(t, svc, "user-1", "Charlie", "c@example.com")
	createContact(t, svc, "user-1", "Alice", "a@example.com")
	createContact(t, svc, "user-1", "Bob", "b@example.com")

	listing, err := svc.Contacts.List(ctx, "user-1", service.ListContactsRequest{
		SortBy:    domain.SortByName,
		SortOrder: domain.SortAsc,
		Page:      1,
		PageSize:  2,
	})
	require.NoError(t, err)
	require.Len(t, listing.Contacts, 2)
	assert.Equal(t, "Alice", listing.Contacts[0].Name)
	assert.Equal(t, "Bob", listing.Contacts[1].Name)
	assert.Equal(t, 3, listing.Total)
	assert.True(t, listing.HasMore)

	listing, err = svc.Contacts.List(ctx, "user-1", service.ListContactsRequest{
		SortBy:    domain.SortByName,
		SortOrder: domain.SortAsc,
		Page:      2,
		PageSize:  2,
	})
	require.NoError(t, err)
	require.Len(t, listing.Contacts, 1)
	assert.Equal(t, "Charlie", listing.Contacts[0].Name)
	assert.False(t, listing.HasMore)
}

func TestContactService_List_RawReferenceFallback(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	c := createContact(t, svc, "user-1", "Ada", "ada@example.com", "client")

	// Delete the tag out from under the contact.
	tag, err := svc.Store.GetTagByName(ctx, "user-1", "client")
	require.NoError(t, err)
	require.NoError(t, svc.Store.DeleteTag(ctx, "user-1", tag.ID))

	// The dangling reference is dropped on read; the request still succeeds.
	got, err := svc.Contacts.Get(ctx, "user-1", c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestContactService_Get_NotFound(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()

	_, err := svc.Contacts.Get(context.Background(), "user-1", "ct-missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestContactService_PaginationInvariant(t *testing.T) {
	svc, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		createContact(t, svc, "user-1", "Contact", string(rune('a'+i))+"@example.com")
	}

	for _, pageSize := range []int{1, 3, 5, 10} {
		for page := 1; page <= 8; page++ {
			listing, err := svc.Contacts.List(ctx, "user-1", service.ListContactsRequest{
				Page:     page,
				PageSize: pageSize,
			})
			require.NoError(t, err)

			skip := (page - 1) * pageSize
			assert.Equal(t, skip+len(listing.Contacts) < listing.Total, listing.HasMore,
				"page=%d pageSize=%d", page, pageSize)
		}
	}
}
