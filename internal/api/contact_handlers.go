package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/service"
)

type listContactsInput struct {
	Search   string `query:"search" doc:"Free-text search over name, email, company, phone and notes"`
	Tag      string `query:"tag" doc:"Filter to contacts carrying this tag name"`
	Sort     string `query:"sort" enum:"created_at,updated_at,name,email,company,last_interaction" doc:"Sort field"`
	Order    string `query:"order" enum:"asc,desc" doc:"Sort direction"`
	Page     int    `query:"page" minimum:"1" doc:"1-indexed page number"`
	PageSize int    `query:"page_size" minimum:"1" maximum:"200" doc:"Items per page"`
}

type contactListBody struct {
	Contacts      []domain.ResolvedContact `json:"contacts"`
	AvailableTags []*domain.Tag            `json:"available_tags"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"page_size"`
	Total         int                      `json:"total"`
	HasMore       bool                     `json:"has_more"`
}

type listContactsOutput struct {
	Body contactListBody
}

type contactOutput struct {
	Body domain.ResolvedContact
}

type createContactInput struct {
	Body service.CreateContactRequest
}

type getContactInput struct {
	ID string `path:"id" doc:"Contact ID"`
}

type updateContactInput struct {
	ID   string `path:"id" doc:"Contact ID"`
	Body service.UpdateContactRequest
}

type deleteContactInput struct {
	ID string `path:"id" doc:"Contact ID"`
}

func (s *Server) registerContactRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-contacts",
		Method:      http.MethodGet,
		Path:        "/api/contacts",
		Summary:     "List contacts",
		Description: "Returns a filtered, sorted page of the caller's contacts plus the full tag list for filter facets.",
		Tags:        []string{"Contacts"},
	}, s.handleListContacts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-contact",
		Method:        http.MethodPost,
		Path:          "/api/contacts",
		Summary:       "Create contact",
		Tags:          []string{"Contacts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-contact",
		Method:      http.MethodGet,
		Path:        "/api/contacts/{id}",
		Summary:     "Get contact",
		Tags:        []string{"Contacts"},
	}, s.handleGetContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-contact",
		Method:      http.MethodPut,
		Path:        "/api/contacts/{id}",
		Summary:     "Update contact",
		Description: "Partial update. A provided tag name list replaces the contact's tag set.",
		Tags:        []string{"Contacts"},
	}, s.handleUpdateContact)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-contact",
		Method:        http.MethodDelete,
		Path:          "/api/contacts/{id}",
		Summary:       "Delete contact",
		Tags:          []string{"Contacts"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteContact)
}

func (s *Server) handleListContacts(ctx context.Context, input *listContactsInput) (*listContactsOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	listing, err := s.services.Contact.List(ctx, ownerID, service.ListContactsRequest{
		Search:    input.Search,
		TagFilter: input.Tag,
		SortBy:    domain.ContactSortField(input.Sort),
		SortOrder: domain.SortOrder(input.Order),
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list contacts", err)
	}

	return &listContactsOutput{Body: contactListBody{
		Contacts:      listing.Contacts,
		AvailableTags: listing.AvailableTags,
		Page:          listing.Page,
		PageSize:      listing.PageSize,
		Total:         listing.Total,
		HasMore:       listing.HasMore,
	}}, nil
}

func (s *Server) handleCreateContact(ctx context.Context, input *createContactInput) (*contactOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.Create(ctx, ownerID, input.Body)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create contact", err)
	}
	return &contactOutput{Body: *contact}, nil
}

func (s *Server) handleGetContact(ctx context.Context, input *getContactInput) (*contactOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.Get(ctx, ownerID, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get contact", err)
	}
	return &contactOutput{Body: *contact}, nil
}

func (s *Server) handleUpdateContact(ctx context.Context, input *updateContactInput) (*contactOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.Update(ctx, ownerID, input.ID, input.Body)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to update contact", err)
	}
	return &contactOutput{Body: *contact}, nil
}

func (s *Server) handleDeleteContact(ctx context.Context, input *deleteContactInput) (*struct{}, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Contact.Delete(ctx, ownerID, input.ID); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete contact", err)
	}
	return &struct{}{}, nil
}
