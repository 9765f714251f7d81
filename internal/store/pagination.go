package store

// PaginationParams contains offset-based pagination request parameters.
// Pages are 1-indexed: Page=1 is the first page.
type PaginationParams struct {
	Page     int // 1-indexed page number (defaults to 1)
	PageSize int // Items per page (defaults to 20, capped at 200)
}

// DefaultPageSize is used when no page size is requested.
const DefaultPageSize = 20

// MaxPageSize caps a single page.
const MaxPageSize = 200

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Skip returns the number of items preceding the requested page.
func (p PaginationParams) Skip() int {
	skip := (p.Page - 1) * p.PageSize
	if skip < 0 {
		return 0
	}
	return skip
}

// PaginatedResult contains one page of data and its pagination metadata.
// HasMore always satisfies: HasMore == (skip + len(Items) < Total).
type PaginatedResult[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasMore  bool `json:"has_more"`
}

// NewPaginatedResult slices items for the requested page and fills metadata.
// The input slice must already be filtered and sorted.
func NewPaginatedResult[T any](items []T, params PaginationParams) *PaginatedResult[T] {
	params.Validate()

	total := len(items)
	skip := params.Skip()

	var page []T
	if skip < total {
		end := skip + params.PageSize
		if end > total {
			end = total
		}
		page = items[skip:end]
	} else {
		page = []T{}
	}

	return &PaginatedResult[T]{
		Items:    page,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		HasMore:  skip+len(page) < total,
	}
}
