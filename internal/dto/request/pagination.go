package request

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// PaginatedRequest carries the paging window for booking list queries.
// Out-of-range values are clamped instead of rejected.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=0"`
	PerPage int `json:"per_page" validate:"min=0,max=100"`
}

func (p PaginatedRequest) Limit() int {
	if p.PerPage < 1 {
		return defaultPerPage
	}
	if p.PerPage > maxPerPage {
		return maxPerPage
	}
	return p.PerPage
}

func (p PaginatedRequest) Offset() int {
	if p.Page < 2 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}
