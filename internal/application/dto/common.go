package dto

// Window limits shared by every list endpoint.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest is the limit/offset window of a list query. A zero Limit means
// DefaultPageLimit.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize applies the default limit and clamps the window. Use cases call it
// too, since they can be reached without going through HTTP validation.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Of describes the page that returned n rows for this window.
func (p PageRequest) Of(n int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Returned: n}
}

// PageResponse echoes the window served. Returned below Limit means the last page.
type PageResponse struct {
	Limit    int `json:"limit"`
	Offset   int `json:"offset"`
	Returned int `json:"returned"`
}

// ErrorResponse is the body of every error reply. Code is the domain error kind,
// e.g. INSUFFICIENT_STOCK or LOCK_TIMEOUT.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
