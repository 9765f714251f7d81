package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/id"
	"github.com/rolodexapp/rolodex-server/internal/store"
	"github.com/rolodexapp/rolodex-server/internal/validation"
)

// TagService owns tag identity, colors, and usage counts.
//
// Names are byte-exact within an owner's partition: "Client" and "client"
// are two different tags. Input is trimmed of surrounding whitespace at this
// boundary; no other normalization is applied.
type TagService struct {
	store     *store.Store
	activity  *ActivityService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, activity *ActivityService, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		activity:  activity,
		validator: validation.New(),
		logger:    logger,
	}
}

// TagListOrder selects the ordering of a tag listing.
type TagListOrder string

// Tag listing orderings. Usage-descending feeds browse and dashboard views,
// name-ascending feeds the filter facet attached to contact listings.
const (
	TagListByUsage TagListOrder = "usage"
	TagListByName  TagListOrder = "name"
)

// List returns all of the owner's tags in the requested order.
func (s *TagService) List(ctx context.Context, ownerID string, order TagListOrder) ([]*domain.Tag, error) {
	storeOrder := store.TagOrderUsageDesc
	if order == TagListByName {
		storeOrder = store.TagOrderNameAsc
	}

	tags, err := s.store.ListTags(ctx, ownerID, storeOrder)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "listing tags")
	}
	return tags, nil
}

// ResolveOrCreate finds a tag by exact name or creates it, incrementing the
// usage count either way. Safe under concurrent callers for the same name.
func (s *TagService) ResolveOrCreate(ctx context.Context, ownerID, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("tag name must not be empty")
	}

	tag, created, err := s.store.ResolveOrCreateTag(ctx, ownerID, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "resolving tag")
	}

	if created {
		s.logger.Info("tag created",
			"tag_id", tag.ID,
			"name", tag.Name,
			"owner_id", ownerID,
		)
	}

	return tag, nil
}

// CreateTagRequest holds the fields for explicit tag creation.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// Create explicitly creates a tag with usage count zero.
// Returns Conflict if the owner already has a tag with this name.
func (s *TagService) Create(ctx context.Context, ownerID string, req CreateTagRequest) (*domain.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	color := req.Color
	if color == "" {
		color = domain.DefaultTagColor
	}

	now := time.Now()
	tag := &domain.Tag{
		ID:        id.MustGenerate(id.PrefixTag),
		OwnerID:   ownerID,
		Name:      req.Name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.CreateTag(ctx, tag)
	if errors.Is(err, store.ErrTagExists) {
		return nil, errors.Conflictf("tag %q already exists", req.Name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "creating tag")
	}

	s.activity.Record(ctx, ownerID, domain.ActionTagCreated, domain.EntityTag, tag.ID, tag.Name)
	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name, "owner_id", ownerID)
	return tag, nil
}

// UpdateTagRequest holds the optional fields for a tag update.
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// Update modifies a tag's name or color.
// Returns NotFound if the tag does not belong to the owner, Conflict if the
// new name collides with another of the owner's tags.
func (s *TagService) Update(ctx context.Context, ownerID, tagID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.store.GetTag(ctx, ownerID, tagID)
	if errors.Is(err, store.ErrTagNotFound) {
		return nil, errors.NotFoundf("tag %s not found", tagID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "loading tag")
	}

	if req.Name != nil {
		tag.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}
	tag.Touch()

	err = s.store.UpdateTag(ctx, tag)
	if errors.Is(err, store.ErrTagExists) {
		return nil, errors.Conflictf("tag %q already exists", tag.Name)
	}
	if errors.Is(err, store.ErrTagNotFound) {
		return nil, errors.NotFoundf("tag %s not found", tagID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "updating tag")
	}

	s.activity.Record(ctx, ownerID, domain.ActionTagUpdated, domain.EntityTag, tag.ID, tag.Name)
	s.logger.Info("tag updated", "tag_id", tag.ID, "name", tag.Name, "owner_id", ownerID)
	return tag, nil
}

// Delete removes a tag. Contacts keep any references to it; the contact
// read path drops references it cannot resolve. Usage counts elsewhere are
// untouched.
func (s *TagService) Delete(ctx context.Context, ownerID, tagID string) error {
	tag, err := s.store.GetTag(ctx, ownerID, tagID)
	if errors.Is(err, store.ErrTagNotFound) {
		return errors.NotFoundf("tag %s not found", tagID)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "loading tag")
	}

	err = s.store.DeleteTag(ctx, ownerID, tagID)
	if errors.Is(err, store.ErrTagNotFound) {
		return errors.NotFoundf("tag %s not found", tagID)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "deleting tag")
	}

	s.activity.Record(ctx, ownerID, domain.ActionTagDeleted, domain.EntityTag, tagID, tag.Name)
	s.logger.Info("tag deleted", "tag_id", tagID, "name", tag.Name, "owner_id", ownerID)
	return nil
}
