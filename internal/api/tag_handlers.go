package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/service"
)

type listTagsInput struct {
	Order string `query:"order" enum:"usage,name" doc:"usage orders by usage count descending, name alphabetically"`
}

type listTagsOutput struct {
	Body struct {
		Tags []*domain.Tag `json:"tags"`
	}
}

type tagOutput struct {
	Body domain.Tag
}

type createTagInput struct {
	Body service.CreateTagRequest
}

type updateTagInput struct {
	ID   string `path:"id" doc:"Tag ID"`
	Body service.UpdateTagRequest
}

type deleteTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-tags",
		Method:      http.MethodGet,
		Path:        "/api/tags",
		Summary:     "List tags",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-tag",
		Method:        http.MethodPost,
		Path:          "/api/tags",
		Summary:       "Create tag",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-tag",
		Method:      http.MethodPut,
		Path:        "/api/tags/{id}",
		Summary:     "Update tag",
		Tags:        []string{"Tags"},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-tag",
		Method:        http.MethodDelete,
		Path:          "/api/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Removes the tag definition. Contacts referencing it keep a raw reference.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTag)
}

func (s *Server) handleListTags(ctx context.Context, input *listTagsInput) (*listTagsOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	order := service.TagListByUsage
	if input.Order == "name" {
		order = service.TagListByName
	}

	tags, err := s.services.Tag.List(ctx, ownerID, order)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tags", err)
	}

	resp := &listTagsOutput{}
	resp.Body.Tags = tags
	return resp, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *createTagInput) (*tagOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Create(ctx, ownerID, input.Body)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create tag", err)
	}
	return &tagOutput{Body: *tag}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *updateTagInput) (*tagOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Update(ctx, ownerID, input.ID, input.Body)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to update tag", err)
	}
	return &tagOutput{Body: *tag}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *deleteTagInput) (*struct{}, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.Delete(ctx, ownerID, input.ID); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete tag", err)
	}
	return &struct{}{}, nil
}
