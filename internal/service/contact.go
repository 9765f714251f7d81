package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/id"
	"github.com/rolodexapp/rolodex-server/internal/store"
	"github.com/rolodexapp/rolodex-server/internal/validation"
)

// ContactService owns contact records. Tag names asserted on a contact write
// go through TagService.ResolveOrCreate, and every mutation appends one
// audit row through ActivityService.
type ContactService struct {
	store     *store.Store
	tags      *TagService
	activity  *ActivityService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(store *store.Store, tags *TagService, activity *ActivityService, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:     store,
		tags:      tags,
		activity:  activity,
		validator: validation.New(),
		logger:    logger,
	}
}

// ListContactsRequest holds the query parameters for a contact listing.
type ListContactsRequest struct {
	// Search is a free-text token matched case-insensitively as a substring
	// against name, email, company, phone, and notes.
	Search string
	// TagFilter is a tag name. An unknown name yields zero results, not an
	// error.
	TagFilter string

	SortBy    domain.ContactSortField
	SortOrder domain.SortOrder

	Page     int
	PageSize int
}

// ContactListing is one page of resolved contacts plus the owner's full tag
// list for filter facets.
type ContactListing struct {
	Contacts      []domain.ResolvedContact
	AvailableTags []*domain.Tag
	Page          int
	PageSize      int
	Total         int
	HasMore       bool
}

// List returns a filtered, sorted, paginated page of the owner's contacts.
// AvailableTags is always the owner's complete tag list in name order,
// independent of the active filter.
func (s *ContactService) List(ctx context.Context, ownerID string, req ListContactsRequest) (*ContactListing, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "listing contacts")
	}

	if req.TagFilter != "" {
		contacts, err = s.filterByTagName(ctx, ownerID, contacts, req.TagFilter)
		if err != nil {
			return nil, err
		}
	}

	if req.Search != "" {
		contacts = filterBySearch(contacts, req.Search)
	}

	sortContacts(contacts, req.SortBy, req.SortOrder)

	params := store.PaginationParams{Page: req.Page, PageSize: req.PageSize}
	result := store.NewPaginatedResult(contacts, params)

	resolved := s.resolveTagRefs(ctx, ownerID, result.Items)

	availableTags, err := s.tags.List(ctx, ownerID, TagListByName)
	if err != nil {
		return nil, err
	}

	return &ContactListing{
		Contacts:      resolved,
		AvailableTags: availableTags,
		Page:          result.Page,
		PageSize:      result.PageSize,
		Total:         result.Total,
		HasMore:       result.HasMore,
	}, nil
}

// filterByTagName resolves a tag name to its id and keeps only contacts
// referencing it. An unknown name matches nothing.
func (s *ContactService) filterByTagName(ctx context.Context, ownerID string, contacts []*domain.Contact, name string) ([]*domain.Contact, error) {
	tag, err := s.store.GetTagByName(ctx, ownerID, name)
	if errors.Is(err, store.ErrTagNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "resolving tag filter")
	}

	filtered := contacts[:0]
	for _, c := range contacts {
		for _, tagID := range c.TagIDs {
			if tagID == tag.ID {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered, nil
}

// filterBySearch keeps contacts where any text field contains the token,
// case-insensitively.
func filterBySearch(contacts []*domain.Contact, search string) []*domain.Contact {
	token := strings.ToLower(search)
	filtered := contacts[:0]
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), token) ||
			strings.Contains(strings.ToLower(c.Email), token) ||
			strings.Contains(strings.ToLower(c.Company), token) ||
			strings.Contains(strings.ToLower(c.Phone), token) ||
			strings.Contains(strings.ToLower(c.Notes), token) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// sortContacts orders contacts in place. Default is creation time descending.
func sortContacts(contacts []*domain.Contact, field domain.ContactSortField, order domain.SortOrder) {
	if field == "" {
		field = domain.SortByCreatedAt
	}
	if order == "" {
		order = domain.SortDesc
	}

	less := func(a, b *domain.Contact) bool {
		switch field {
		case domain.SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case domain.SortByEmail:
			return strings.ToLower(a.Email) < strings.ToLower(b.Email)
		case domain.SortByCompany:
			return strings.ToLower(a.Company) < strings.ToLower(b.Company)
		case domain.SortByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case domain.SortByLastInteraction:
			return a.LastInteractionAt.Before(b.LastInteractionAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		if order == domain.SortAsc {
			return less(contacts[i], contacts[j])
		}
		return less(contacts[j], contacts[i])
	})
}

// resolveTagRefs denormalizes each contact's tag references into
// {id, name, color} objects. Resolution is best-effort: if the lookup fails
// the contact is returned with raw references instead of failing the page.
func (s *ContactService) resolveTagRefs(ctx context.Context, ownerID string, contacts []*domain.Contact) []domain.ResolvedContact {
	resolved := make([]domain.ResolvedContact, 0, len(contacts))
	for _, c := range contacts {
		rc := domain.ResolvedContact{Contact: *c, Tags: []domain.TagRef{}}

		tags, err := s.store.GetTagsByIDs(ctx, ownerID, c.TagIDs)
		if err != nil {
			s.logger.Warn("tag resolution failed, returning raw references",
				"contact_id", c.ID,
				"owner_id", ownerID,
				"error", err,
			)
			for _, tagID := range c.TagIDs {
				rc.Tags = append(rc.Tags, domain.TagRef{ID: tagID})
			}
		} else {
			for _, t := range tags {
				rc.Tags = append(rc.Tags, t.Ref())
			}
		}

		resolved = append(resolved, rc)
	}
	return resolved
}

// Get returns one contact with resolved tag references.
// Returns NotFound if the contact does not belong to the owner.
func (s *ContactService) Get(ctx context.Context, ownerID, contactID string) (*domain.ResolvedContact, error) {
	c, err := s.store.GetContact(ctx, ownerID, contactID)
	if errors.Is(err, store.ErrContactNotFound) {
		return nil, errors.NotFoundf("contact %s not found", contactID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "loading contact")
	}

	resolved := s.resolveTagRefs(ctx, ownerID, []*domain.Contact{c})
	return &resolved[0], nil
}

// CreateContactRequest holds the fields for contact creation.
type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company string `json:"company,omitempty" validate:"omitempty,max=200"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=5000"`

	// TagNames are resolved through the tag registry; unknown names are
	// created lazily. Duplicates collapse to one reference.
	TagNames []string `json:"tags,omitempty"`
}

// Create stores a new contact, resolving tag names and appending one audit
// row. Returns Validation on missing name/email and Conflict when the owner
// already has a contact with the email.
func (s *ContactService) Create(ctx context.Context, ownerID string, req CreateContactRequest) (*domain.ResolvedContact, error) {
	return s.create(ctx, ownerID, req, true)
}

// create is the shared creation path. Batch callers pass recordActivity=false
// so the batch itself owns the single audit row.
func (s *ContactService) create(ctx context.Context, ownerID string, req CreateContactRequest, recordActivity bool) (*domain.ResolvedContact, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tagIDs, err := s.resolveTagNames(ctx, ownerID, req.TagNames)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	contact := &domain.Contact{
		ID:                id.MustGenerate(id.PrefixContact),
		OwnerID:           ownerID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Company:           req.Company,
		Notes:             req.Notes,
		TagIDs:            tagIDs,
		CreatedAt:         now,
		UpdatedAt:         now,
		LastInteractionAt: now,
	}

	err = s.store.CreateContact(ctx, contact)
	if errors.Is(err, store.ErrEmailExists) {
		return nil, errors.Conflictf("a contact with email %s already exists", req.Email)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "creating contact")
	}

	if recordActivity {
		s.activity.Record(ctx, ownerID, domain.ActionContactCreated, domain.EntityContact, contact.ID, contact.Name)
	}
	s.logger.Info("contact created",
		"contact_id", contact.ID,
		"owner_id", ownerID,
		"tag_count", len(tagIDs),
	)

	resolved := s.resolveTagRefs(ctx, ownerID, []*domain.Contact{contact})
	return &resolved[0], nil
}

// UpdateContactRequest holds the optional fields for a contact update.
// TagNames, when non-nil, fully replaces the contact's tag-reference set.
type UpdateContactRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=5000"`

	TagNames []string `json:"tags,omitempty"`
}

// Update modifies a contact. Tag names replace the previous reference set
// outright, and each name passes through resolve-or-create again, so
// re-asserting an existing tag bumps its usage count. The audit row
// snapshots the contact's name from before the update.
func (s *ContactService) Update(ctx context.Context, ownerID, contactID string, req UpdateContactRequest) (*domain.ResolvedContact, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	contact, err := s.store.GetContact(ctx, ownerID, contactID)
	if errors.Is(err, store.ErrContactNotFound) {
		return nil, errors.NotFoundf("contact %s not found", contactID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "loading contact")
	}

	previousName := contact.Name

	if req.Name != nil {
		contact.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		contact.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Company != nil {
		contact.Company = *req.Company
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}

	if req.TagNames != nil {
		tagIDs, err := s.resolveTagNames(ctx, ownerID, req.TagNames)
		if err != nil {
			return nil, err
		}
		contact.TagIDs = tagIDs
	}

	contact.Touch()
	contact.LastInteractionAt = time.Now()

	err = s.store.UpdateContact(ctx, contact)
	if errors.Is(err, store.ErrContactNotFound) {
		return nil, errors.NotFoundf("contact %s not found", contactID)
	}
	if errors.Is(err, store.ErrEmailExists) {
		return nil, errors.Conflictf("a contact with email %s already exists", contact.Email)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "updating contact")
	}

	s.activity.Record(ctx, ownerID, domain.ActionContactUpdated, domain.EntityContact, contact.ID, previousName)
	s.logger.Info("contact updated", "contact_id", contact.ID, "owner_id", ownerID)

	resolved := s.resolveTagRefs(ctx, ownerID, []*domain.Contact{contact})
	return &resolved[0], nil
}

// Delete removes a contact. Tag usage counts stay untouched and the
// contact's audit rows survive.
func (s *ContactService) Delete(ctx context.Context, ownerID, contactID string) error {
	contact, err := s.store.GetContact(ctx, ownerID, contactID)
	if errors.Is(err, store.ErrContactNotFound) {
		return errors.NotFoundf("contact %s not found", contactID)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "loading contact")
	}

	err = s.store.DeleteContact(ctx, ownerID, contactID)
	if errors.Is(err, store.ErrContactNotFound) {
		return errors.NotFoundf("contact %s not found", contactID)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "deleting contact")
	}

	s.activity.Record(ctx, ownerID, domain.ActionContactDeleted, domain.EntityContact, contactID, contact.Name)
	s.logger.Info("contact deleted", "contact_id", contactID, "owner_id", ownerID)
	return nil
}

// resolveTagNames runs each name through resolve-or-create and returns the
// deduplicated id set. Blank names are skipped.
func (s *ContactService) resolveTagNames(ctx context.Context, ownerID string, names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	tagIDs := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		tag, err := s.tags.ResolveOrCreate(ctx, ownerID, name)
		if err != nil {
			return nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tagIDs = append(tagIDs, tag.ID)
		}
	}

	return tagIDs, nil
}
