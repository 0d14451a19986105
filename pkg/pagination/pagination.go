package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

// MaxLimit caps the page size a caller may ask the backend for.
const MaxLimit = 100

// Params holds pagination parameters extracted from query strings. The
// storefront backend names the page size "limit".
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{Page: 1, Limit: 20}
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// FromRequest extracts pagination parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	return FromQuery(r.URL.Query())
}

// FromQuery extracts pagination parameters from parsed query values.
// Invalid values fall back to the defaults.
func FromQuery(q url.Values) Params {
	p := DefaultParams()

	if page := q.Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := q.Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= MaxLimit {
			p.Limit = v
		}
	}

	return p
}

// Apply writes the parameters onto a backend query. The defaults are omitted
// so unpaged listings keep their minimal URL.
func (p Params) Apply(q url.Values) {
	def := DefaultParams()
	if p.Page != def.Page {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit != def.Limit {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	totalPages := totalCount / params.Limit
	if totalCount%params.Limit > 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Slice pages an in-memory list, for backends that return the whole listing.
func Slice[T any](all []T, params Params) Result[T] {
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return NewResult(all[start:end], len(all), params)
}
