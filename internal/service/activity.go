// Package service implements the business operations over the store:
// contact CRUD with tag resolution, tag lifecycle, the activity audit
// trail, CSV transfer, and dashboard aggregation.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/id"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// ActivityService appends and reads the per-owner audit trail.
type ActivityService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(store *store.Store, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		store:  store,
		logger: logger,
	}
}

// Record appends one audit row. Failures are swallowed after a warning:
// audit-trail unavailability must never abort the mutation that triggered
// it, so call sites treat this as a best-effort side effect.
func (s *ActivityService) Record(ctx context.Context, ownerID, action string, entityType domain.EntityType, entityID, entityName string) {
	activity := &domain.Activity{
		ID:         id.MustGenerate(id.PrefixActivity),
		OwnerID:    ownerID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		CreatedAt:  time.Now(),
	}

	if err := s.store.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("activity log write failed",
			"owner_id", ownerID,
			"action", action,
			"entity_type", entityType,
			"error", err,
		)
	}
}

// ListActivitiesRequest narrows and paginates an activity listing.
type ListActivitiesRequest struct {
	// Days limits the window to the trailing N days; 0 means all time.
	Days int
	// Action, if non-empty, requires an exact action match.
	Action string
	// UserID optionally reads a different user's trail. Reserved for
	// shared visibility; empty means the caller's own trail.
	UserID string

	Page     int
	PageSize int
}

// List returns one page of the owner's activities, newest first.
func (s *ActivityService) List(ctx context.Context, ownerID string, req ListActivitiesRequest) (*store.PaginatedResult[*domain.Activity], error) {
	targetOwner := ownerID
	if req.UserID != "" {
		targetOwner = req.UserID
	}

	filter := store.ActivityFilter{Action: req.Action}
	if req.Days > 0 {
		filter.Since = time.Now().AddDate(0, 0, -req.Days)
	}

	params := store.PaginationParams{Page: req.Page, PageSize: req.PageSize}
	params.Validate()

	items, total, err := s.store.ListActivities(ctx, targetOwner, filter, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "listing activities")
	}

	return &store.PaginatedResult[*domain.Activity]{
		Items:    items,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		HasMore:  params.Skip()+len(items) < total,
	}, nil
}
