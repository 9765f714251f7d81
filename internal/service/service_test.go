package service_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/service"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// testServices bundles the full service graph over one temp store.
type testServices struct {
	Store     *store.Store
	Activity  *service.ActivityService
	Tags      *service.TagService
	Contacts  *service.ContactService
	Transfer  *service.TransferService
	Dashboard *service.DashboardService
}

func setupServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	activity := service.NewActivityService(s, logger)
	tags := service.NewTagService(s, activity, logger)
	contacts := service.NewContactService(s, tags, activity, logger)
	transfer := service.NewTransferService(s, contacts, activity, logger)
	dashboard := service.NewDashboardService(s, logger)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServices{
		Store:     s,
		Activity:  activity,
		Tags:      tags,
		Contacts:  contacts,
		Transfer:  transfer,
		Dashboard: dashboard,
	}, cleanup
}
