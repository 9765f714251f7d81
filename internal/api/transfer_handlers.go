package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rolodexapp/rolodex-server/internal/service"
)

type importContactsInput struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"text/csv" doc:"CSV file with a name,email,phone,company,tags,notes header"`
}

type importContactsOutput struct {
	Body service.ImportResult
}

type exportContactsOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (s *Server) registerTransferRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "import-contacts",
		Method:      http.MethodPost,
		Path:        "/api/contacts/import",
		Summary:     "Import contacts from CSV",
		Description: "Processes each data row independently and reports per-row failures. Rate limited per caller.",
		Tags:        []string{"Transfer"},
	}, s.handleImportContacts)

	huma.Register(s.api, huma.Operation{
		OperationID: "export-contacts",
		Method:      http.MethodGet,
		Path:        "/api/contacts/export",
		Summary:     "Export contacts to CSV",
		Tags:        []string{"Transfer"},
	}, s.handleExportContacts)
}

func (s *Server) handleImportContacts(ctx context.Context, input *importContactsInput) (*importContactsOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	if !s.importLimiter.Allow(ownerID) {
		return nil, huma.NewError(http.StatusTooManyRequests, "import rate limit exceeded, try again shortly")
	}
	if int64(len(input.RawBody)) > s.maxUploadBytes {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "uploaded file exceeds the size limit")
	}

	result, err := s.services.Transfer.Import(ctx, ownerID, input.RawBody)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to import contacts", err)
	}
	return &importContactsOutput{Body: *result}, nil
}

func (s *Server) handleExportContacts(ctx context.Context, _ *struct{}) (*exportContactsOutput, error) {
	ownerID, err := GetOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.services.Transfer.Export(ctx, ownerID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to export contacts", err)
	}
	return &exportContactsOutput{
		ContentType: "text/csv; charset=utf-8",
		Body:        data,
	}, nil
}
