package delivery

import (
	"github.com/x-xyz/marketengine/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PageParams are the common list query params
type PageParams struct {
	Offset  *int32          `query:"offset"`
	Limit   *int32          `query:"limit"`
	SortBy  *string         `query:"sortBy"`
	SortDir *domain.SortDir `query:"sortDir"`
}

// Page returns offset and limit, limit defaults to 20 and is capped at 100
func (p PageParams) Page() (int32, int32) {
	offset, limit := int32(0), int32(defaultPageLimit)
	if p.Offset != nil && *p.Offset > 0 {
		offset = *p.Offset
	}
	if p.Limit != nil && *p.Limit > 0 {
		limit = *p.Limit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

// Sort returns the requested sort field when it is one of allowed, def
// otherwise. Direction defaults to descending.
func (p PageParams) Sort(def string, allowed ...string) (string, domain.SortDir) {
	sortBy, sortDir := def, domain.SortDir(domain.SortDirDesc)
	if p.SortBy != nil {
		for _, f := range allowed {
			if f == *p.SortBy {
				sortBy = f
			}
		}
	}
	if p.SortDir != nil && (*p.SortDir == domain.SortDirAsc || *p.SortDir == domain.SortDirDesc) {
		sortDir = *p.SortDir
	}
	return sortBy, sortDir
}

type PageResult struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}
