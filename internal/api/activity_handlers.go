package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/service"
)

type listActivitiesInput struct {
	Days     int    `query:"days" minimum:"0" doc:"Limit to the trailing N days; 0 means all time"`
	Action   string `query:"action" doc:"Filter to an exact action string"`
	Page     int    `query:"page" minimum:"1" doc:"1-indexed page number"`
	PageSize int    `query:"page_size" minimum:"1" maximum:"200" doc:"Items per page"`
}

type listActivitiesOutput struct {
	Body struct {
		Activities []*domain.Activity `json:"activities"`
		Page       int                `json:"page"`
		PageSize   int                `json:"page_size"`
		Total      int                `json:"total"`
		HasMore    bool               `json:"has_more"`
	}
}

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-activities",
		Method:      http.MethodGet,
		Path:        "/api/activities",
		Summary:     "List activities",
		Description: "Returns the caller's audit trail, newest first.",
		Tags:        []string{"Activities"},
	}, s.handleListActivities)
}

func (s *Server) handleListActivities(ctx context.Context, input *listActivitiesInput) (*listActivitiesOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Activity.List(ctx, ownerID, service.ListActivitiesRequest{
		Days:     input.Days,
		Action:   input.Action,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list activities", err)
	}

	resp := &listActivitiesOutput{}
	resp.Body.Activities = result.Items
	resp.Body.Page = result.Page
	resp.Body.PageSize = result.PageSize
	resp.Body.Total = result.Total
	resp.Body.HasMore = result.HasMore
	return resp, nil
}
