package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/id"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func newTestContact(ownerID, name, email string) *domain.Contact {
	now := time.Now()
	return &domain.Contact{
		ID:                id.MustGenerate(id.PrefixContact),
		OwnerID:           ownerID,
		Name:              name,
		Email:             email,
		CreatedAt:         now,
		UpdatedAt:         now,
		LastInteractionAt: now,
	}
}

func TestContact_Create_Success(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := newTestContact("user-1", "Ada Lovelace", "ada@example.com")
	require.NoError(t, s.CreateContact(ctx, c))

	got, err := s.GetContact(ctx, "user-1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestContact_Create_DuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateContact(ctx, newTestContact("user-1", "Ada", "ada@example.com")))

	err := s.CreateContact(ctx, newTestContact("user-1", "Other Ada", "ada@example.com"))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestContact_Create_DuplicateEmailCaseInsensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateContact(ctx, newTestContact("user-1", "Ada", "ada@example.com")))

	err := s.CreateContact(ctx, newTestContact("user-1", "Ada 2", "ADA@Example.COM"))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestContact_Create_SameEmailDifferentOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateContact(ctx, newTestContact("user-1", "Ada", "ada@example.com")))
	require.NoError(t, s.CreateContact(ctx, newTestContact("user-2", "Ada", "ada@example.com")))
}

func TestContact_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetContact(context.Background(), "user-1", "ct_missing")
	assert.ErrorIs(t, err, store.ErrContactNotFound)
}

func TestContact_Get_WrongOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := newTestContact("user-1", "Ada", "ada@example.com")
	require.NoError(t, s.CreateContact(ctx, c))

	_, err := s.GetContact(ctx, "user-2", c.ID)
	assert.ErrorIs(t, err, store.ErrContactNotFound)
}

func TestContact_GetByEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := newTestContact("user-1", "Ada", "ada@example.com")
	require.NoError(t, s.CreateContact(ctx, c))

	got, err := s.GetContactByEmail(ctx, "user-1", "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = s.GetContactByEmail(ctx, "user-1", "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrContactNotFound)
}

func TestContact_Update_MovesEmailIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := newTestContact("user-1", "Ada", "ada@example.com")
	require.NoError(t, s.CreateContact(ctx, c))

	c.Email = "countess@example.com"
	c.Touch()
	require.NoError(t, s.UpdateContact(ctx, c))

	// Old email must be free again.
	exists, err := s.ContactEmailExists(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := s.GetContactByEmail(ctx, "user-1", "countess@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestContact_Update_EmailCollision(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateContact(ctx, newTestContact("user-1", "Ada", "ada@example.com")))
	c := newTestContact("user-1", "Grace", "grace@example.com")
	require.NoError(t, s.CreateContact(ctx, c))

	c.Email = "ada@example.com"
	err := s.UpdateContact(ctx, c)
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestContact_Update_SameEmailKeepsIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := newTestContact("user-1", "Ada", "ada@example.com")
	require.NoError(t, s.CreateContact(ctx, c))

	c.Name = "Ada King"
	require.NoError(t, s.UpdateContact(ctx, c))

	got, err := s.GetContactByEmail(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada King", got.Name)
}

func TestContact_Update_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	c := newTestContact("user-1", "Ghost", "ghost@example.com")
	err := s.UpdateContact(context.Background(), c)
	assert.ErrorIs(t, err, store.ErrContactNotFound)
}

func TestContact_Delete_FreesEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := newTestContact("user-1", "Ada", "ada@example.com")
	require.NoError(t, s.CreateContact(ctx, c))
	require.NoError(t, s.DeleteContact(ctx, "user-1", c.ID))

	_, err := s.GetContact(ctx, "user-1", c.ID)
	assert.ErrorIs(t, err, store.ErrContactNotFound)

	// Email is reusable after deletion.
	require.NoError(t, s.CreateContact(ctx, newTestContact("user-1", "Ada Again", "ada@example.com")))
}

func TestContact_Delete_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.DeleteContact(context.Background(), "user-1", "ct_missing")
	assert.ErrorIs(t, err, store.ErrContactNotFound)
}

func TestContact_List_OwnerScoped(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateContact(ctx, newTestContact("user-1", "Ada", "ada@example.com")))
	require.NoError(t, s.CreateContact(ctx, newTestContact("user-1", "Grace", "grace@example.com")))
	require.NoError(t, s.CreateContact(ctx, newTestContact("user-2", "Alan", "alan@example.com")))

	contacts, err := s.ListContacts(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	count, err := s.CountContacts(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.CountContacts(ctx, "user-3")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
