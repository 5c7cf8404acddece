package api

import (
	"net/url"
	"strconv"

	"github.com/opencustody/consolekit/filters"
)

// Page is one page of a list response.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListParams carries pagination, sorting and screen-specific predicates
// for list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	OrderBy string
	Order   string
	Filter  map[string]string
}

// Query encodes the params as URL query values.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.OrderBy != "" {
		q.Set("orderBy", p.OrderBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	for k, v := range p.Filter {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// ParamsFromValues converts a table controller's filter state into list
// params. Unknown keys become predicates.
func ParamsFromValues(v filters.Values) ListParams {
	p := ListParams{Filter: make(map[string]string)}
	for k, val := range v {
		switch k {
		case "page":
			p.Page, _ = strconv.Atoi(val)
		case "limit":
			p.Limit, _ = strconv.Atoi(val)
		case "orderBy":
			p.OrderBy = val
		case "order":
			p.Order = val
		default:
			p.Filter[k] = val
		}
	}
	return p
}
