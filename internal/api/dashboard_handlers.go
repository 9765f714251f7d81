package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rolodexapp/rolodex-server/internal/domain"
)

type dashboardOutput struct {
	Body domain.Dashboard
}

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/api/dashboard",
		Summary:     "Dashboard overview",
		Description: "Aggregated snapshot: summary counts, top companies, a seven-day activity timeline, tag distribution and recent activity.",
		Tags:        []string{"Dashboard"},
	}, s.handleDashboard)
}

func (s *Server) handleDashboard(ctx context.Context, _ *struct{}) (*dashboardOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	dashboard, err := s.services.Dashboard.Overview(ctx, ownerID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to build dashboard", err)
	}
	return &dashboardOutput{Body: *dashboard}, nil
}
