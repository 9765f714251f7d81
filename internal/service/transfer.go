package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// maxImportErrors caps the diagnostic strings returned to the caller.
// ErrorCount still reflects the true number of failed rows.
const maxImportErrors = 10

// exportDateLayout formats the Created At column.
const exportDateLayout = "2006-01-02"

// TransferService moves contacts in and out as CSV.
type TransferService struct {
	store    *store.Store
	contacts *ContactService
	activity *ActivityService
	logger   *slog.Logger
}

// NewTransferService creates a new transfer service.
func NewTransferService(store *store.Store, contacts *ContactService, activity *ActivityService, logger *slog.Logger) *TransferService {
	return &TransferService{
		store:    store,
		contacts: contacts,
		activity: activity,
		logger:   logger,
	}
}

// ImportResult summarizes one CSV import batch.
type ImportResult struct {
	BatchID        string   `json:"batch_id"`
	TotalProcessed int      `json:"total_processed"`
	SuccessCount   int      `json:"success_count"`
	ErrorCount     int      `json:"error_count"`
	Errors         []string `json:"errors"`
}

// importColumns maps header names to their position in a parsed row.
type importColumns struct {
	name    int
	email   int
	phone   int
	company int
	tags    int
	notes   int
}

// Import parses CSV bytes and creates one contact per data row.
//
// Processing is row-independent and best-effort: a bad row (missing
// name/email, duplicate email) is recorded as a "Row <n>: <reason>"
// diagnostic and the batch continues. Only an unreadable file fails the
// whole call. Tag names in the tags column pass through resolve-or-create
// like interactive writes. Exactly one audit row is appended for the batch.
func (s *TransferService) Import(ctx context.Context, ownerID string, data []byte) (*ImportResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Rows validate themselves
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Validation("csv file is empty or unreadable").WithCause(err)
	}

	cols, err := parseImportHeader(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		BatchID: uuid.NewString(),
		Errors:  []string{},
	}

	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalProcessed++
			result.ErrorCount++
			result.addError(rowNum, "malformed row")
			continue
		}

		result.TotalProcessed++

		req := buildImportRequest(record, cols)
		if _, err := s.contacts.create(ctx, ownerID, req, false); err != nil {
			result.ErrorCount++
			result.addError(rowNum, importErrorReason(err, req.Email))
			continue
		}

		result.SuccessCount++
	}

	s.activity.Record(ctx, ownerID, domain.ActionContactImported, domain.EntityContact,
		result.BatchID, fmt.Sprintf("%d contacts from CSV", result.SuccessCount))

	s.logger.Info("csv import finished",
		"owner_id", ownerID,
		"batch_id", result.BatchID,
		"total", result.TotalProcessed,
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount,
	)

	return result, nil
}

// addError appends a row diagnostic, respecting the cap.
func (r *ImportResult) addError(rowNum int, reason string) {
	if len(r.Errors) < maxImportErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", rowNum, reason))
	}
}

// parseImportHeader locates the expected columns by name, case-insensitively.
func parseImportHeader(header []string) (importColumns, error) {
	cols := importColumns{name: -1, email: -1, phone: -1, company: -1, tags: -1, notes: -1}

	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			cols.name = i
		case "email":
			cols.email = i
		case "phone":
			cols.phone = i
		case "company":
			cols.company = i
		case "tags":
			cols.tags = i
		case "notes":
			cols.notes = i
		}
	}

	if cols.name == -1 || cols.email == -1 {
		return cols, errors.Validation("csv header must include name and email columns")
	}
	return cols, nil
}

// buildImportRequest maps one parsed row onto a create request.
// The tags column is a comma-separated list inside a single field.
func buildImportRequest(record []string, cols importColumns) CreateContactRequest {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var tagNames []string
	if raw := field(cols.tags); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				tagNames = append(tagNames, name)
			}
		}
	}

	return CreateContactRequest{
		Name:     field(cols.name),
		Email:    field(cols.email),
		Phone:    field(cols.phone),
		Company:  field(cols.company),
		Notes:    field(cols.notes),
		TagNames: tagNames,
	}
}

// importErrorReason renders a service error as a short row diagnostic.
// Validation failures list the offending fields from the validator so a
// malformed email reads differently from a missing name.
func importErrorReason(err error, email string) string {
	switch {
	case errors.Is(err, errors.ErrValidation):
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			if fields, ok := domainErr.Details.(map[string]string); ok && len(fields) > 0 {
				names := make([]string, 0, len(fields))
				for name := range fields {
					names = append(names, name)
				}
				sort.Strings(names)
				parts := make([]string, 0, len(names))
				for _, name := range names {
					parts = append(parts, name+" "+fields[name])
				}
				return strings.Join(parts, "; ")
			}
		}
		return "name and email are required"
	case errors.Is(err, errors.ErrConflict):
		return fmt.Sprintf("email %s already exists", email)
	default:
		return err.Error()
	}
}

// exportHeader is the fixed column order of an export.
var exportHeader = []string{"Name", "Email", "Phone", "Company", "Tags", "Notes", "Created At"}

// Export renders all of the owner's contacts as CSV bytes.
//
// Every field is quoted unconditionally, multi-valued tags are joined with
// semicolons inside one field, and absent optionals render as empty strings.
// Zero contacts still produce the header line. Exactly one audit row is
// appended for the export.
func (s *TransferService) Export(ctx context.Context, ownerID string) ([]byte, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "listing contacts for export")
	}

	sortContacts(contacts, domain.SortByCreatedAt, domain.SortDesc)

	var buf bytes.Buffer
	writeQuotedRow(&buf, exportHeader)

	for _, c := range contacts {
		tags, err := s.store.GetTagsByIDs(ctx, ownerID, c.TagIDs)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnavailable, "resolving tags for export")
		}

		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, t.Name)
		}

		writeQuotedRow(&buf, []string{
			c.Name,
			c.Email,
			c.Phone,
			c.Company,
			strings.Join(names, ";"),
			c.Notes,
			c.CreatedAt.Format(exportDateLayout),
		})
	}

	s.activity.Record(ctx, ownerID, domain.ActionContactExported, domain.EntityContact,
		"", fmt.Sprintf("%d contacts to CSV", len(contacts)))

	s.logger.Info("csv export finished", "owner_id", ownerID, "contacts", len(contacts))
	return buf.Bytes(), nil
}

// writeQuotedRow writes one CSV row with every field quoted, escaping
// embedded quotes by doubling. Unconditional quoting keeps the writer
// trivial at the cost of slightly larger output.
func writeQuotedRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}
