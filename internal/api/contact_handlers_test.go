package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/domain"
)

func createContactViaAPI(t *testing.T, ts *apiTestServer, identity, name, email string, tagNames ...string) domain.ResolvedContact {
	t.Helper()

	resp := ts.api.Post("/api/contacts", identity, map[string]any{
		"name":      name,
		"email":     email,
		"tags":      tagNames,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var contact domain.ResolvedContact
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &contact))
	return contact
}

func TestCreateContact(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/contacts", asAlice, map[string]any{
		"name":      "Ada Lovelace",
		"email":     "ada@example.com",
		"company":   "Analytical Engines",
		"tags":      []string{"vip", "client"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var contact domain.ResolvedContact
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &contact))
	assert.NotEmpty(t, contact.ID)
	assert.Equal(t, "Ada Lovelace", contact.Name)
	assert.Len(t, contact.Tags, 2)
}

func TestCreateContact_MissingEmail(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/contacts", asAlice, map[string]any{
		"name": "No Email",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestCreateContact_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	createContactViaAPI(t, ts, asAlice, "Ada", "ada@example.com")

	resp := ts.api.Post("/api/contacts", asAlice, map[string]any{
		"name":  "Ada Again",
		"email": "ADA@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "CONFLICT")
}

func TestGetContact(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	created := createContactViaAPI(t, ts, asAlice, "Ada", "ada@example.com")

	resp := ts.api.Get("/api/contacts/"+created.ID, asAlice)
	require.Equal(t, http.StatusOK, resp.Code)

	var contact domain.ResolvedContact
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &contact))
	assert.Equal(t, created.ID, contact.ID)
}

func TestGetContact_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/contacts/ct-missing", asAlice)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "NOT_FOUND")
}

func TestGetContact_OtherOwnerHidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	created := createContactViaAPI(t, ts, asAlice, "Ada", "ada@example.com")

	resp := ts.api.Get("/api/contacts/"+created.ID, "X-User-ID: bob")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateContact_ReplacesTags(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	created := createContactViaAPI(t, ts, asAlice, "Ada", "ada@example.com", "alpha", "beta")

	resp := ts.api.Put("/api/contacts/"+created.ID, asAlice, map[string]any{
		"tags": []string{"beta", "gamma"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var contact domain.ResolvedContact
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &contact))
	names := []string{contact.Tags[0].Name, contact.Tags[1].Name}
	assert.ElementsMatch(t, []string{"beta", "gamma"}, names)
}

func TestDeleteContact(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	created := createContactViaAPI(t, ts, asAlice, "Ada", "ada@example.com")

	resp := ts.api.Delete("/api/contacts/"+created.ID, asAlice)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/contacts/"+created.ID, asAlice)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListContacts_SearchAndPagination(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	for i := 0; i < 5; i++ {
		createContactViaAPI(t, ts, asAlice, fmt.Sprintf("Person %d", i), fmt.Sprintf("p%d@acme.com", i))
	}
	createContactViaAPI(t, ts, asAlice, "Outsider", "out@other.org")

	resp := ts.api.Get("/api/contacts?search=acme&page=1&page_size=3", asAlice)
	require.Equal(t, http.StatusOK, resp.Code)

	var body contactListBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Total)
	assert.Len(t, body.Contacts, 3)
	assert.True(t, body.HasMore)
}

func TestListContacts_TagFilterUnknownIsEmpty(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	createContactViaAPI(t, ts, asAlice, "Ada", "ada@example.com", "vip")

	resp := ts.api.Get("/api/contacts?tag=never-used", asAlice)
	require.Equal(t, http.StatusOK, resp.Code)

	var body contactListBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Total)
	assert.Empty(t, body.Contacts)
	// The facet list still shows every tag.
	assert.Len(t, body.AvailableTags, 1)
}

func TestListContacts_SortByName(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	createContactViaAPI(t, ts, asAlice, "Charlie", "c@example.com")
	createContactViaAPI(t, ts, asAlice, "Alice", "a@example.com")
	createContactViaAPI(t, ts, asAlice, "Bob", "b@example.com")

	resp := ts.api.Get("/api/contacts?sort=name&order=asc", asAlice)
	require.Equal(t, http.StatusOK, resp.Code)

	var body contactListBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Contacts, 3)
	assert.Equal(t, "Alice", body.Contacts[0].Name)
	assert.Equal(t, "Bob", body.Contacts[1].Name)
	assert.Equal(t, "Charlie", body.Contacts[2].Name)
}
