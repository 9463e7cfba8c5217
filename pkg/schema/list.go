package schema

// Sort keys accepted by the list endpoint.
const (
	SortUpdatedAt   = "updatedAt"
	SortScheduledAt = "scheduledAt"
	SortPriority    = "priority"
)

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Page size bounds enforced by the server.
const (
	MinPageSize = 5
	MaxPageSize = 100
)

// ListParams selects, orders and paginates the article list.
// The multi-value filters are inclusion sets; an empty set means no filter.
type ListParams struct {
	Page     int
	PageSize int

	Query string

	Status   []string
	Region   []string
	Category []string
	Priority []string

	Sort  string
	Order string
}

// Normalize fills defaults and clamps the page size to the server bounds.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 25
	}
	if p.PageSize < MinPageSize {
		p.PageSize = MinPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Sort == "" {
		p.Sort = SortUpdatedAt
	}
	if p.Order == "" {
		p.Order = OrderDesc
	}
	return p
}

// ListResult is one page of articles plus the pre-pagination total.
type ListResult struct {
	Items    []Article `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// Clone returns a deep copy of the result.
func (r ListResult) Clone() ListResult {
	c := r
	if r.Items == nil {
		return c
	}
	c.Items = make([]Article, len(r.Items))
	for i, a := range r.Items {
		c.Items[i] = a.Clone()
	}
	return c
}
